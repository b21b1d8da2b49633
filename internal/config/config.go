// Package config loads the deploy configuration. Every field has a default
// so the tool runs with no config file present.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full deploy configuration.
type Config struct {
	Installer Installer `yaml:"installer"`
	CUDA      CUDA      `yaml:"cuda"`
	Network   Network   `yaml:"network"`
	Configs   URLs      `yaml:"configs"`
}

// Installer selects which upstream node installer release to download.
type Installer struct {
	// Version is the release tag for the GPU-less install path.
	Version string `yaml:"version"`
	// CUDAVersion is the release tag used with --ggmlcuda. The two shell
	// script generations disagreed on this value; it is one knob here.
	CUDAVersion string `yaml:"cuda_version"`
	BaseURL     string `yaml:"base_url"`
}

// CUDA pins the toolkit version installed system-wide.
type CUDA struct {
	ToolkitVersion string `yaml:"toolkit_version"`
}

// Network holds the port and domain settings handed to the node binary.
type Network struct {
	Domain string `yaml:"domain"`
	// PortPrefix is concatenated with the instance index: prefix 809 gives
	// instance 3 port 8093.
	PortPrefix string `yaml:"port_prefix"`
}

// URLs are the three candidate remote node configs.
type URLs struct {
	LaptopGPU  string `yaml:"laptop_gpu"`
	Fallback   string `yaml:"fallback"`
	DesktopGPU string `yaml:"desktop_gpu"`
}

const nodeConfigBase = "https://raw.githubusercontent.com/GaiaNet-AI/node-configs/main"

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Installer: Installer{
			Version:     "0.4.20",
			CUDAVersion: "0.4.21",
			BaseURL:     "https://github.com/GaiaNet-AI/gaianet-node/releases/download",
		},
		CUDA: CUDA{
			ToolkitVersion: "12.8",
		},
		Network: Network{
			Domain:     "gaia.domains",
			PortPrefix: "809",
		},
		Configs: URLs{
			LaptopGPU:  nodeConfigBase + "/llama-3.2-3b-instruct/config.json",
			Fallback:   nodeConfigBase + "/qwen2-0.5b-instruct/config.json",
			DesktopGPU: nodeConfigBase + "/llama-3-8b-instruct/config.json",
		},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
