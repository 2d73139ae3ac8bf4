package main

import (
	"log"

	"github.com/spigell/recruit-responder/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
