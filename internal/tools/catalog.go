package tools

import (
	"fmt"
	"sort"
	"strings"
)

// Tool describes one scanning tool the execution backend knows how to run.
type Tool struct {
	Name           string `mapstructure:"name" yaml:"name"`
	Title          string `mapstructure:"title" yaml:"title"`
	Description    string `mapstructure:"description" yaml:"description"`
	RequiresTarget bool   `mapstructure:"requires_target" yaml:"requires_target"`
}

// Catalog is the fixed set of tools known at configuration time, in display order.
type Catalog struct {
	tools []Tool
	index map[string]int
}

// DefaultTools returns the tools exposed by the stock backend.
func DefaultTools() []Tool {
	return []Tool{
		{
			Name:           "nmap",
			Title:          "Nmap Port Scanner",
			Description:    "Network mapping and port discovery",
			RequiresTarget: true,
		},
		{
			Name:           "nikto",
			Title:          "Nikto Web Scanner",
			Description:    "Web server vulnerability scanning",
			RequiresTarget: true,
		},
		{
			Name:           "nuclei",
			Title:          "Nuclei Scanner",
			Description:    "Template-based vulnerability scanning",
			RequiresTarget: true,
		},
		{
			Name:           "sslyze",
			Title:          "SSLyze",
			Description:    "TLS configuration analysis",
			RequiresTarget: true,
		},
		{
			Name:           "zap-baseline",
			Title:          "ZAP Baseline",
			Description:    "Passive web application scan",
			RequiresTarget: true,
		},
		{
			Name:           "zap-api",
			Title:          "ZAP API Scan",
			Description:    "OpenAPI/GraphQL endpoint scanning",
			RequiresTarget: true,
		},
		{
			Name:           "openvas-start",
			Title:          "OpenVAS",
			Description:    "Start the OpenVAS scanner service",
			RequiresTarget: false,
		},
	}
}

// NewCatalog builds a catalog, rejecting empty and duplicate tool names.
func NewCatalog(tools []Tool) (*Catalog, error) {
	c := &Catalog{
		tools: make([]Tool, 0, len(tools)),
		index: make(map[string]int, len(tools)),
	}
	for _, t := range tools {
		t.Name = strings.TrimSpace(t.Name)
		if t.Name == "" {
			return nil, fmt.Errorf("tool name cannot be empty")
		}
		if _, dup := c.index[t.Name]; dup {
			return nil, fmt.Errorf("duplicate tool %q", t.Name)
		}
		if t.Title == "" {
			t.Title = t.Name
		}
		c.index[t.Name] = len(c.tools)
		c.tools = append(c.tools, t)
	}
	return c, nil
}

// DefaultCatalog returns a catalog of DefaultTools.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultTools())
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the tool registered under name.
func (c *Catalog) Lookup(name string) (Tool, error) {
	i, ok := c.index[name]
	if !ok {
		return Tool{}, fmt.Errorf("unknown tool %q (available: %s)", name, strings.Join(c.Names(), ", "))
	}
	return c.tools[i], nil
}

// Tools returns a copy of the catalog in display order.
func (c *Catalog) Tools() []Tool {
	out := make([]Tool, len(c.tools))
	copy(out, c.tools)
	return out
}

// Names returns the sorted tool identifiers.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.tools))
	for _, t := range c.tools {
		names = append(names, t.Name)
	}
	sort.Strings(names)
	return names
}
