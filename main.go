package main

import (
	"flag"
	_ "net/http/pprof"

	"solgraph/cache"
	"solgraph/config"
	"solgraph/db"
	"solgraph/graph"
	"solgraph/log"
	"solgraph/mail"
	"solgraph/rpc"
	"solgraph/server"
	"solgraph/solscan"
)

var enableMail bool

func init() {
	flag.BoolVar(&enableMail, "mail", false, "If mail alert is enabled")
}

func main() {
	flag.Parse()

	log.Init()
	config.Load(true)
	db.Init()
	mail.Init(enableMail)

	defer mail.AlertIfErr()

	go rpc.TraceHealth()

	builder := &graph.Builder{
		Tx:       rpc.Source{},
		Flows:    solscan.Source{},
		Assets:   cache.NewTokens(db.CacheStore{}, rpc.Source{}),
		Accounts: solscan.Source{},
		Prices:   solscan.Source{},
		Store:    db.CacheStore{},
		Workers:  config.GetWorkers(),
	}

	log.Printf("Serving flow graph API on %s", config.GetListen())

	if err := server.Run(config.GetListen(), builder); err != nil {
		panic(err)
	}
}
