package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"log"

	"github.com/robotalks/param.go/pkg/cli/sh"
	"github.com/robotalks/param.go/pkg/param"
	"github.com/robotalks/param.go/pkg/storage"
)

var imagePath string

func init() {
	param.SetupFlags()
	flag.StringVar(&imagePath, "image", "params.img", "Parameter image file.")
}

func main() {
	flag.Parse()

	conf := param.NewConfig()
	dev, err := storage.OpenFileDevice(imagePath, param.ImageSize(conf.Count))
	if err != nil {
		log.Fatalln(err)
	}
	defer dev.Close()

	store, err := conf.NewStore(dev)
	if err != nil {
		log.Fatalln(err)
	}
	state, err := store.Load()
	if err != nil {
		log.Fatalln(err)
	}
	log.Printf("parameter image %s: %v", imagePath, state)

	sh.New(store).Run(flag.Args()...)
}
