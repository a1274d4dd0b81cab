// Command rmserver exposes a running record manager table over HTTP: a
// JSON stats endpoint, a websocket-streamed scan, and a cron heartbeat that
// logs buffer pool and tuple counts. This glue is additive observability
// over the core record manager, not part of its storage algorithms.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/coredb/recordmgr/recordmgr"
	"github.com/coredb/recordmgr/rmconfig"
)

func main() {
	tablePath := flag.String("table", "", "path to an existing table file to serve")
	createSchema := flag.Bool("create", false, "create the table (with a demo schema) if it does not exist")
	addr := flag.String("addr", ":8765", "HTTP listen address")
	configPath := flag.String("config", "", "path to a rmconfig YAML file (optional)")
	flag.Parse()

	if *tablePath == "" {
		log.Fatal("rmserver: -table is required")
	}

	cfg := rmconfig.Default()
	if *configPath != "" {
		loaded, err := rmconfig.Load(*configPath)
		if err != nil {
			log.Fatalf("rmserver: %v", err)
		}
		cfg = loaded
	}
	if err := recordmgr.InitRecordManager(cfg); err != nil {
		log.Fatalf("rmserver: %v", err)
	}

	tbl, err := openOrCreateTable(*tablePath, cfg, *createSchema)
	if err != nil {
		log.Fatalf("rmserver: %v", err)
	}
	defer recordmgr.CloseTable(tbl)

	srv := NewServer(tbl)
	defer srv.Close()

	log.Printf("rmserver: serving table %q on %s", *tablePath, *addr)
	if err := srv.ListenAndServe(*addr); err != nil {
		log.Fatal(err)
	}
}

func openOrCreateTable(path string, cfg rmconfig.Config, create bool) (*recordmgr.Table, error) {
	if _, err := os.Stat(path); err == nil {
		return recordmgr.OpenTable(path, cfg)
	} else if !create {
		return nil, err
	}

	schema, err := recordmgr.NewSchema(
		[]string{"id", "name"},
		[]recordmgr.DataType{recordmgr.TypeInt, recordmgr.TypeString},
		[]int32{0, 32},
		[]int32{0},
	)
	if err != nil {
		return nil, err
	}
	return recordmgr.CreateTable(path, schema, cfg)
}
