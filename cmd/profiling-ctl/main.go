package main

import (
	"fmt"
	"io/ioutil"
	"os"
	"time"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"

	"gitlab.x.lan/yunshan/profiling-libs/causal"
	"gitlab.x.lan/yunshan/profiling-libs/config"
	"gitlab.x.lan/yunshan/profiling-libs/datatype"
	"gitlab.x.lan/yunshan/profiling-libs/fitness"
	"gitlab.x.lan/yunshan/profiling-libs/hwcounter"
	"gitlab.x.lan/yunshan/profiling-libs/logger"
	"gitlab.x.lan/yunshan/profiling-libs/offcpu"
	"gitlab.x.lan/yunshan/profiling-libs/stats"
	"gitlab.x.lan/yunshan/profiling-libs/store"
)

func readFile(path string) string {
	if path == "" {
		return ""
	}
	content, err := ioutil.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read %s: %s\n", path, err)
		os.Exit(1)
	}
	return string(content)
}

func causalCommand() *cobra.Command {
	topN := 3
	cmd := &cobra.Command{
		Use:   "causal <profile.coz>",
		Short: "Parse a Coz/BCOZ causal profile and print impact analysis",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			result := causal.Parse(readFile(args[0]))
			fmt.Printf("Lines profiled: %d\n", len(result.LineProfiles))
			fmt.Printf("Max impact: %.1f%% at %s\n", result.MaxImpactPct(), result.MaxImpactLocation())
			fmt.Printf("Has opportunity: %t\n", result.HasOptimizationOpportunity())
			if result.RuntimeNs > 0 {
				fmt.Printf("Profile runtime: %s\n", units.HumanDuration(time.Duration(result.RuntimeNs)))
			}
			for _, profile := range result.TopOpportunities() {
				fmt.Printf("  %s: %.1f%% (efficiency=%.2f)\n",
					profile.Location, profile.PredictedImpactPct(), profile.ImpactEfficiency())
			}
			fmt.Println()
			fmt.Println(causal.GenerateMutationContext(result, topN))
		},
	}
	cmd.Flags().IntVar(&topN, "top", 3, "locations to include in the guidance text")
	return cmd
}

func offCpuCommand() *cobra.Command {
	topN := 3
	cmd := &cobra.Command{
		Use:   "offcpu <report.txt>",
		Short: "Parse a bperf off-CPU report and print blocking analysis",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			result := offcpu.Parse(readFile(args[0]))
			fmt.Printf("Off-CPU ratio: %.2f%% (%d/%d samples)\n",
				result.OffCpuRatio()*100, result.OffCpuSamples, result.TotalSamples)
			fmt.Printf("Significant blocking: %t\n", result.HasSignificantBlocking())
			for _, site := range result.TopBlockers {
				fmt.Printf("  %s: %.1f%% (%d samples)\n", site.Function, site.Percentage, site.Samples)
			}
			fmt.Println()
			fmt.Println(offcpu.GenerateMutationContext(result, topN))
		},
	}
	cmd.Flags().IntVar(&topN, "top", 3, "call sites to include in the guidance text")
	return cmd
}

func perfCommand() *cobra.Command {
	topN := 5
	reportPath := ""
	cmd := &cobra.Command{
		Use:   "perf <stat.txt>",
		Short: "Parse perf stat (and optionally perf report) output",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			result := hwcounter.Parse(readFile(args[0]), readFile(reportPath))
			fmt.Printf("IPC: %.2f\n", result.Ipc())
			fmt.Printf("Cache miss rate: %.1f%%\n", result.CacheMissPct())
			fmt.Printf("Branch miss rate: %.1f%%\n", result.BranchMissPct())
			if len(result.Hotspots) > 0 {
				top := result.TopHotspots()[0]
				fmt.Printf("Top hotspot: %s\n", top.String())
			}
			fmt.Println()
			fmt.Println(hwcounter.GenerateMutationContext(result, topN))
		},
	}
	cmd.Flags().StringVar(&reportPath, "report", "", "perf report --stdio output file")
	cmd.Flags().IntVar(&topN, "top", 5, "hotspots to include in the guidance text")
	return cmd
}

func scoreCommand() *cobra.Command {
	var (
		configPath  string
		mutationID  string
		throughput  float64
		latency     float64
		compiled    bool
		testsPassed bool
		causalPath  string
		offCpuPath  string
		fast        bool
	)
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Compute the combined fitness of one measured mutation",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.Load(configPath)
			if cfg.StatsdServer != "" {
				if err := stats.SetRemote(cfg.StatsdServer); err != nil {
					fmt.Fprintf(os.Stderr, "connect statsd %s: %s\n", cfg.StatsdServer, err)
				}
			}
			result := &datatype.MutationResult{
				MutationID:       mutationID,
				Compiled:         compiled,
				TestsPassed:      testsPassed,
				ThroughputOpsSec: throughput,
				P99LatencyUs:     latency,
			}
			if causalPath != "" {
				result.Causal = causal.Parse(readFile(causalPath))
			}
			if offCpuPath != "" {
				result.OffCpu = offcpu.Parse(readFile(offCpuPath))
			}

			var score float64
			if fast {
				score = fitness.FastFitness(result, &cfg.Baseline)
			} else {
				score = fitness.CausalFitness(result, &cfg.Baseline, cfg.Weights)
			}
			fmt.Println(fitness.Summary(result, &cfg.Baseline, score))

			if cfg.Influxdb.Enabled {
				writeHistory(&cfg.Influxdb, result, score)
			}
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "f", "/etc/profiling.yaml", "config file location")
	cmd.Flags().StringVar(&mutationID, "id", "", "mutation identifier")
	cmd.Flags().Float64Var(&throughput, "throughput", 0, "measured throughput in ops/sec")
	cmd.Flags().Float64Var(&latency, "latency", 0, "measured p99 latency in us")
	cmd.Flags().BoolVar(&compiled, "compiled", true, "mutation compiled")
	cmd.Flags().BoolVar(&testsPassed, "tests-passed", true, "mutation passed tests")
	cmd.Flags().StringVar(&causalPath, "causal", "", "causal profile file")
	cmd.Flags().StringVar(&offCpuPath, "offcpu", "", "bperf report file")
	cmd.Flags().BoolVar(&fast, "fast", false, "throughput/latency only scoring")
	return cmd
}

// writeHistory appends one evaluation point to the mutation history
// database so an optimization loop can chart fitness per generation.
func writeHistory(cfg *config.InfluxdbConfig, result *datatype.MutationResult, score float64) {
	writer, err := store.NewInfluxdbWriter(cfg.HTTPAddr, cfg.BatchSize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect influxdb %s: %s\n", cfg.HTTPAddr, err)
		return
	}
	point := &store.EvaluationPoint{
		Timestamp:        time.Now(),
		MutationID:       result.MutationID,
		Valid:            result.IsValid(),
		Fitness:          score,
		ThroughputOpsSec: result.ThroughputOpsSec,
		P99LatencyUs:     result.P99LatencyUs,
	}
	if result.Causal != nil {
		point.CausalMaxImpactPct = result.Causal.MaxImpactPct()
	}
	if result.OffCpu != nil {
		point.OffCpuRatio = result.OffCpu.OffCpuRatio()
	}
	writer.Put(point)
	if err := writer.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "write evaluation history: %s\n", err)
	}
}

func main() {
	logger.InitConsoleLog("info")
	root := &cobra.Command{
		Use:   "profiling-ctl",
		Short: "Profiler Output Analysis Tool",
	}
	root.AddCommand(causalCommand())
	root.AddCommand(offCpuCommand())
	root.AddCommand(perfCommand())
	root.AddCommand(scoreCommand())
	root.SetArgs(os.Args[1:])
	root.Execute()
}
