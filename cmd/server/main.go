package main

import (
	"log"
	"os"
	"sync"

	"github.com/RenSan888/compnetproject/internal/config"
	"github.com/RenSan888/compnetproject/internal/ftp"
)

func main() {
	log.Println("Server started")

	cfgPath := "configs/server.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg := config.LoadServerYaml(cfgPath)

	var wg sync.WaitGroup

	server := ftp.NewServer(
		cfg.Addr,
		cfg.RootDir,
		cfg.Transfer,
		&wg,
	)

	wg.Add(1)
	go server.Run()
	wg.Wait()
}
