// Package main is the entry point of cinesrc.
package main

import (
	"time"

	"github.com/cinesrc/cinesrc/cmd"
	"github.com/cinesrc/cinesrc/config"
	"github.com/cinesrc/cinesrc/internal/cache"
	"github.com/cinesrc/cinesrc/key"
	"github.com/cinesrc/cinesrc/log"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	if ttl := viper.GetInt(key.ProvidersCacheTTL); ttl > 0 {
		cache.CollectGarbage(time.Duration(ttl) * time.Minute)
	}

	cmd.Execute()
}
