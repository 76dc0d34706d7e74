package main

import (
	"log"

	"github.com/fieldworks/workorder-service/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
