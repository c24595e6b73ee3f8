package main

import (
	"github.com/certsentry/certsentry/pkg/fxapp"
)

func main() {
	fxapp.New().Run()
}
