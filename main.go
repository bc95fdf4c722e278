package main

import (
	"log"
	"offline-reconciler-go/cli"
)

func main() {
	err := cli.Run()
	if err != nil {
		log.Panic(err)
	}
}
