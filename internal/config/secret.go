package config

// CompiledToken holds an IPC service token embedded at build time via
// -ldflags "-X github.com/example/panbox/internal/config.CompiledToken=<value>".
// When empty the token is resolved from the environment or the config file.
var CompiledToken string
