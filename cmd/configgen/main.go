package main

import (
	"flag"
	"log"
	"os"

	"github.com/danmuck/spacepackets/internal/config"
)

const defaultPath = "cmd/cfdpctl/config.toml"

func main() {
	kind := flag.String("kind", "cfdpctl", "config kind: cfdpctl")
	output := flag.String("output", "", "output path for config template")
	validate := flag.Bool("validate", false, "validate an existing config file")
	render := flag.Bool("render", false, "print the resolved config (defaults applied) as TOML")
	input := flag.String("input", "", "config path for validation or rendering (defaults to "+defaultPath+")")
	force := flag.Bool("force", false, "overwrite existing config file")
	flag.Parse()

	if _, err := config.Template(*kind); err != nil {
		log.Fatal(err)
	}

	if *validate || *render {
		path := *input
		if path == "" {
			path = defaultPath
		}
		if err := config.CheckStrict(path); err != nil {
			log.Fatal(err)
		}
		cfg, err := config.Load(path)
		if err != nil {
			log.Fatal(err)
		}
		if *render {
			out, err := config.Render(cfg)
			if err != nil {
				log.Fatal(err)
			}
			os.Stdout.Write(out)
			return
		}
		log.Printf("Validated %s config at %s", *kind, path)
		return
	}

	target := *output
	if target == "" {
		target = defaultPath
	}
	if err := config.WriteTemplate(target, *kind, *force); err != nil {
		log.Fatal(err)
	}
	log.Printf("Wrote %s config template to %s", *kind, target)
}
