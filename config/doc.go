// Package config resolves vrt settings from layered sources.
//
// Precedence, highest first:
//  1. Command-line flags (ResolveWithFlags)
//  2. VRT_* environment variables, plus the standard NO_COLOR
//  3. Local config: .vrt.yaml in the git root of the package
//  4. Global config: ~/.config/vrt/config.yaml
//  5. Built-in defaults
//
// Every resolved value records its Source so `vrt config list` can show
// where it came from:
//
//	resolver := config.NewResolver(config.ResolverConfig{StartDir: dir})
//	resolved := resolver.Resolve()
//	settings, err := resolved.Settings()
//	fmt.Println(settings.Branch, resolved.Source(config.KeyBranch))
package config
