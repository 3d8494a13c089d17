package stats

import (
	"errors"
	"sync"
	"time"

	logging "github.com/op/go-logging"
	statsd "gopkg.in/alexcesaro/statsd.v2"
)

var log = logging.MustGetLogger("stats")

type source struct {
	module    string
	countable Countable
	tags      OptionStatTags
	interval  time.Duration

	nextFlush time.Time
}

var (
	lock     sync.Mutex
	sources  []*source
	client   *statsd.Client
	hostname string
	running  bool
)

func setRemote(addr string) error {
	c, err := statsd.New(statsd.Address(addr), statsd.ErrorHandler(func(err error) {
		log.Warningf("statsd send error: %s", err)
	}))
	if err != nil {
		return err
	}
	lock.Lock()
	if client != nil {
		client.Close()
	}
	client = c
	lock.Unlock()
	return nil
}

func setHostname(name string) {
	lock.Lock()
	hostname = name
	lock.Unlock()
}

func registerCountable(module string, countable Countable, opts ...StatsOption) error {
	s := &source{
		module:    module,
		countable: countable,
		interval:  MinInterval,
	}
	for _, opt := range opts {
		switch v := opt.(type) {
		case OptionStatTags:
			s.tags = v
		case OptionInterval:
			if time.Duration(v) > MinInterval {
				s.interval = time.Duration(v)
			}
		default:
			return errors.New("unknown stats option")
		}
	}
	s.nextFlush = time.Now().Add(s.interval)

	lock.Lock()
	defer lock.Unlock()
	for _, old := range sources {
		if old.countable == countable {
			return errors.New("countable already registered")
		}
	}
	sources = append(sources, s)
	if !running {
		running = true
		go run()
	}
	return nil
}

func deregisterCountable(countable Countable) {
	lock.Lock()
	defer lock.Unlock()
	for i, s := range sources {
		if s.countable == countable {
			sources = append(sources[:i], sources[i+1:]...)
			return
		}
	}
}

func run() {
	ticker := time.NewTicker(MinInterval)
	for range ticker.C {
		flush()
	}
}

func flush() {
	lock.Lock()
	defer lock.Unlock()

	now := time.Now()
	for _, s := range sources {
		if now.Before(s.nextFlush) {
			continue
		}
		s.nextFlush = now.Add(s.interval)

		// 即使没有配置statsd服务器也要读取并清零计数
		counter := s.countable.GetCounter()
		items, ok := counter.([]StatItem)
		if !ok {
			log.Warningf("module %s counter is not []StatItem", s.module)
			continue
		}
		if client == nil {
			continue
		}
		for _, item := range items {
			bucket := s.module + "." + item.Name
			if hostname != "" {
				bucket = hostname + "." + bucket
			}
			switch item.Type {
			case COUNT_TYPE:
				client.Count(bucket, item.Value)
			case GAUGE_TYPE:
				client.Gauge(bucket, item.Value)
			}
		}
	}
}
