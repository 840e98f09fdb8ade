package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"log"
	"time"

	fx "github.com/robotalks/param.go/pkg/framework"
	"github.com/robotalks/param.go/pkg/param"
	"github.com/robotalks/param.go/pkg/storage"
	"github.com/robotalks/param.go/pkg/telem"
	"github.com/robotalks/param.go/pkg/telem/mqtt"
	"github.com/robotalks/param.go/pkg/telem/serial"
	"github.com/robotalks/param.go/pkg/telem/ws"
)

var (
	imagePath string
	wsURL     string
	interval  time.Duration
	escalate  bool
)

func init() {
	param.SetupFlags()
	mqtt.SetupFlags()
	serial.SetupFlags()
	flag.StringVar(&imagePath, "image", "params.img", "Parameter image file.")
	flag.StringVar(&wsURL, "ws", wsURL, "Ground station websocket URL, e.g. ws://host:port/param.")
	flag.DurationVar(&interval, "interval", fx.DefaultInterval, "Update cycle interval.")
	flag.BoolVar(&escalate, "escalate-write-errors", escalate,
		"Escalate persist failures to the loop instead of retrying next cycle.")
}

func newReadWriter() (telem.PacketReadWriter, error) {
	if conf := serial.NewConfig(); conf.Port != "" || conf.VID != "" {
		return conf.NewReadWriter()
	}
	if wsURL != "" {
		return ws.Dial(wsURL)
	}
	return mqtt.NewConfig().NewReadWriter()
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

	rw, err := newReadWriter()
	if err != nil {
		log.Fatalln(err)
	}

	tuner := telem.NewTuner(store, telem.NewPacketLink(rw))
	if escalate {
		tuner.Policy = telem.Escalate
	}
	if err = tuner.Start(); err != nil {
		log.Fatalln(err)
	}

	loop := fx.NewLoop()
	loop.Interval = interval
	loop.Add(tuner).RunOrFail()
}
