package xkb

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

// DefaultRegistryPath is where xkeyboard-config installs its rules on most
// distributions.
const DefaultRegistryPath = "/usr/share/X11/xkb/rules/evdev.xml"

type Registry struct {
	XMLName    xml.Name   `xml:"xkbConfigRegistry"`
	LayoutList LayoutList `xml:"layoutList"`
}

type ConfigItem struct {
	Name        string `xml:"name"`
	Description string `xml:"description"`
}

type Variant struct {
	ConfigItem ConfigItem `xml:"configItem"`
}

type VariantList struct {
	Variant []Variant `xml:"variant"`
}

type Layout struct {
	ConfigItem  ConfigItem  `xml:"configItem"`
	VariantList VariantList `xml:"variantList"`
}

type LayoutList struct {
	Layout []Layout `xml:"layout"`
}

func Load(path string) (*Registry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open registry: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

func Parse(r io.Reader) (*Registry, error) {
	registry := &Registry{}
	if err := xml.NewDecoder(r).Decode(registry); err != nil {
		return nil, fmt.Errorf("decode xml: %w", err)
	}
	return registry, nil
}

// Describe returns the human readable name of a layout id such as "us" or
// "us+intl", or "" when the registry does not know it.
func (r *Registry) Describe(id string) string {
	layout, variant, _ := strings.Cut(id, "+")
	for _, l := range r.LayoutList.Layout {
		if l.ConfigItem.Name != layout {
			continue
		}
		if variant == "" {
			return l.ConfigItem.Description
		}
		for _, v := range l.VariantList.Variant {
			if v.ConfigItem.Name == variant {
				return v.ConfigItem.Description
			}
		}
	}
	return ""
}

// Known reports whether the base layout of id exists in the registry.
func (r *Registry) Known(id string) bool {
	layout, _, _ := strings.Cut(id, "+")
	for _, l := range r.LayoutList.Layout {
		if l.ConfigItem.Name == layout {
			return true
		}
	}
	return false
}
