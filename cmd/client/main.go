package main

import (
	"log"
	"os"

	"github.com/RenSan888/compnetproject/internal/config"
	"github.com/RenSan888/compnetproject/internal/ftp"
)

func main() {
	log.Println("Client started")

	cfgPath := "configs/client.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg := config.LoadClientYaml(cfgPath)

	client := ftp.NewClient(
		cfg.RemoteAddr,
		cfg.DownloadDir,
		cfg.Transfer,
	)

	client.Run()
}
