package main

import (
	"fmt"
	"strings"

	"github.com/hurttlocker/dossier/internal/mcp"
)

func runMCP(args []string) error {
	var dbPath, configPath string

	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--db" && i+1 < len(args):
			i++
			dbPath = args[i]
		case strings.HasPrefix(args[i], "--db="):
			dbPath = strings.TrimPrefix(args[i], "--db=")
		case args[i] == "--config" && i+1 < len(args):
			i++
			configPath = args[i]
		case strings.HasPrefix(args[i], "--config="):
			configPath = strings.TrimPrefix(args[i], "--config=")
		case strings.HasPrefix(args[i], "-"):
			return fmt.Errorf("unknown flag: %s", args[i])
		default:
			return fmt.Errorf("unexpected argument: %s", args[i])
		}
	}

	s, err := openStore(dbPath, configPath)
	if err != nil {
		return err
	}
	defer s.Close()

	srv := mcp.NewServer(mcp.ServerConfig{Store: s, Version: version})
	return mcp.ServeStdio(srv)
}
