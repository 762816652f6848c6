package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/lk2023060901/metasearch-client/internal/conf"
	"github.com/lk2023060901/metasearch-client/internal/metasearch/session"
	"github.com/lk2023060901/metasearch-client/internal/metasearch/types"
	"github.com/lk2023060901/metasearch-client/internal/pkg/logger"
)

var (
	configFile = flag.String("config", "", "config file path")
	endpoint   = flag.String("endpoint", "", "aggregation endpoint URL (overrides config)")
	query      = flag.String("query", "", "search query")
	providers  = flag.String("providers", "", "comma-separated provider id filter")
)

func main() {
	flag.Parse()

	if *query == "" {
		fmt.Fprintln(os.Stderr, "usage: metasearch -query <text> [-config config.yaml] [-endpoint url] [-providers a,b]")
		os.Exit(2)
	}

	config := defaultConfig()
	if *configFile != "" {
		loaded, err := conf.LoadConfig(*configFile)
		if err != nil {
			panic("failed to load config: " + err.Error())
		}
		config = loaded
	}
	if *endpoint != "" {
		config.Search.Endpoint = *endpoint
	}

	logConfig := &logger.Config{
		Level:            config.Log.Level,
		Format:           config.Log.Format,
		Output:           config.Log.Output,
		EnableCaller:     config.Log.EnableCaller,
		EnableStacktrace: config.Log.EnableStacktrace,
		File: logger.FileConfig{
			Filename:   config.Log.File.Filename,
			MaxSize:    config.Log.File.MaxSize,
			MaxAge:     config.Log.File.MaxAge,
			MaxBackups: config.Log.File.MaxBackups,
			Compress:   config.Log.File.Compress,
		},
	}
	log, err := logger.New(logConfig)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	sess := session.New(session.Config{
		Endpoint:              config.Search.Endpoint,
		Locale:                config.Search.Locale,
		MaxResultsPerProvider: config.Search.MaxResultsPerProvider,
		ProviderTimeout:       config.Search.ProviderTimeout,
		MaxFrameBuffer:        config.Search.MaxFrameBuffer,
	}, log)

	var providerIDs []string
	if *providers != "" {
		providerIDs = strings.Split(*providers, ",")
	}

	sess.StartSearch(session.SearchOptions{
		Query:       *query,
		ProviderIDs: providerIDs,
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for running := true; running; {
		select {
		case <-sess.Done():
			running = false
		case <-sigCh:
			log.Info("cancelling search")
			sess.CancelSearch()
			running = false
		case <-ticker.C:
			p := sess.Progress()
			fmt.Printf("\rsearching... %3d%%", p.Percentage)
		}
	}
	fmt.Println()

	printSummary(sess.State())

	if st := sess.State(); st.Error != "" {
		log.Error("search failed", zap.String("error", st.Error))
		os.Exit(1)
	}
}

func defaultConfig() *conf.Config {
	return &conf.Config{
		Search: conf.SearchConfig{
			Endpoint:              "http://localhost:8080/api/v1/metadata/search",
			Locale:                "en",
			MaxResultsPerProvider: 10,
			ProviderTimeout:       60 * time.Second,
		},
		Log: conf.LogConfig{
			Level:  "info",
			Format: "console",
			Output: "console",
		},
	}
}

func printSummary(st types.SearchState) {
	ids := make([]string, 0, len(st.ProviderStatuses))
	for id := range st.ProviderStatuses {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		ps := st.ProviderStatuses[id]
		line := fmt.Sprintf("  %-20s %-10s results=%d", ps.Name, ps.Status, ps.ResultCount)
		if ps.Error != "" {
			line += fmt.Sprintf("  [%s] %s", ps.ErrorType, ps.Error)
		}
		fmt.Println(line)
	}

	fmt.Printf("providers: %d completed, %d failed of %d; results: %d\n",
		st.ProvidersCompleted, st.ProvidersFailed, st.TotalProviders, st.TotalResults)
	if st.Error != "" {
		fmt.Printf("error: %s\n", st.Error)
	}
}
