package main

import (
	"encoding/json"
	"flag"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lk2023060901/metasearch-client/internal/metasearch/types"
	"github.com/lk2023060901/metasearch-client/internal/mockbackend"
	"github.com/lk2023060901/metasearch-client/internal/pkg/logger"
)

var (
	addr  = flag.String("addr", ":8080", "listen address")
	stall = flag.Bool("stall", false, "make one provider stall to exercise timeouts")
)

func main() {
	flag.Parse()

	log, err := logger.New(logger.DefaultConfig())
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	script := mockbackend.Script{
		Providers: []mockbackend.ProviderScript{
			{ID: "openlibrary", Name: "Open Library", Delay: 300 * time.Millisecond, Results: 7},
			{ID: "googlebooks", Name: "Google Books", Delay: 700 * time.Millisecond, Results: 12},
			{ID: "worldcat", Name: "WorldCat", Delay: 450 * time.Millisecond, Fail: true,
				FailType: "ConnectionError", FailMessage: "upstream refused the connection"},
		},
		Records: sampleRecords(),
	}
	if *stall {
		script.Providers = append(script.Providers, mockbackend.ProviderScript{
			ID: "isbndb", Name: "ISBNdb", Delay: 200 * time.Millisecond, Stall: true,
		})
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/api/v1/metadata/search", mockbackend.Handler(script, log))

	log.Info("mock aggregation backend listening", zap.String("addr", *addr))
	if err := r.Run(*addr); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

func sampleRecords() []types.MetadataRecord {
	raw := []string{
		`{"title":"The Master and Margarita","authors":["Mikhail Bulgakov"],"identifiers":{"isbn_13":"9780141180144"}}`,
		`{"title":"Invisible Cities","authors":["Italo Calvino"],"identifiers":{"isbn_13":"9780156453806"}}`,
	}
	records := make([]types.MetadataRecord, 0, len(raw))
	for _, r := range raw {
		records = append(records, json.RawMessage(r))
	}
	return records
}
