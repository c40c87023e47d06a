package handler

import (
	"pms-admin-service/internal/token"
	"pms-admin-service/pkg/config"
)

var (
	tokens *token.Manager
	cfg    *config.Config
)

// Init wires the token manager and configuration into the handler package.
// Must be called once at startup before any route is served.
func Init(tm *token.Manager, c *config.Config) {
	tokens = tm
	cfg = c
}
