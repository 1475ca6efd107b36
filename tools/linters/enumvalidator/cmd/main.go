package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"rollcall.app/bot/tools/linters/enumvalidator"
)

func main() {
	singlechecker.Main(enumvalidator.Analyzer)
}
