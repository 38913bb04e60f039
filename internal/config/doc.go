// Package config holds the model registry and runtime settings for argus.
//
// Precedence (highest to lowest):
//  1. Environment variables (ARGUS_*, plus provider API keys)
//  2. .env file in the working directory
//  3. Optional YAML model file (ARGUS_MODELS_FILE)
//  4. Built-in defaults
//
// Use [Load] to obtain merged [Settings] and the model [Registry]. A model is
// enabled only when its provider credential is present; disabled models are
// listed but never called.
package config
