package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()

	nmap, err := c.Lookup("nmap")
	require.NoError(t, err)
	assert.True(t, nmap.RequiresTarget)

	openvas, err := c.Lookup("openvas-start")
	require.NoError(t, err)
	assert.False(t, openvas.RequiresTarget)

	_, err = c.Lookup("metasploit")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nmap")

	assert.Len(t, c.Tools(), 7)
	assert.Equal(t, "nmap", c.Tools()[0].Name)
}

func TestNewCatalogRejectsBadEntries(t *testing.T) {
	_, err := NewCatalog([]Tool{{Name: " "}})
	require.Error(t, err)

	_, err = NewCatalog([]Tool{{Name: "nmap"}, {Name: "nmap"}})
	require.ErrorContains(t, err, "duplicate")
}

func TestNewCatalogDefaultsTitle(t *testing.T) {
	c, err := NewCatalog([]Tool{{Name: "masscan", RequiresTarget: true}})
	require.NoError(t, err)
	got, err := c.Lookup("masscan")
	require.NoError(t, err)
	assert.Equal(t, "masscan", got.Title)
}

func TestToolsReturnsCopy(t *testing.T) {
	c := DefaultCatalog()
	list := c.Tools()
	list[0].Name = "mutated"
	got, err := c.Lookup("nmap")
	require.NoError(t, err)
	assert.Equal(t, "nmap", got.Name)
}
