// Command termctl is the operator CLI of the terminology resolution engine.
// It resolves terms against the live store, works the feedback review queue,
// applies migrations, seeds canonical entities from a YAML fixture and mints
// reviewer tokens.
//
// Configuration is read the same way as the server: --config, CONFIG_PATH,
// ./config.yaml, then environment variables.
package main
