package main

import (
	"fmt"
	"os"
	"sync"

	"pasres/internal/project"
)

var (
	projectOnce sync.Once
	projectCfg  project.Config
	projectErr  error
)

// loadProjectConfig discovers pasres.toml from the working directory once.
func loadProjectConfig() (project.Config, error) {
	projectOnce.Do(func() {
		wd, err := os.Getwd()
		if err != nil {
			projectErr = err
			return
		}
		projectCfg, _, projectErr = project.Discover(wd)
		if projectErr != nil {
			projectErr = fmt.Errorf("pasres.toml: %w", projectErr)
		}
	})
	return projectCfg, projectErr
}
