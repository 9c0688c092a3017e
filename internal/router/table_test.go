package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/midiaexterior/gateway/internal/config"
)

func testRoutes() []config.Route {
	return []config.Route{
		{PathPrefix: "/api/v1/placas", Module: "placas"},
		{PathPrefix: "/api/v1/placas/fotos", Module: "fotos"},
		{PathPrefix: "/api/v1/clientes", Module: "clientes", RequiresAuth: true},
	}
}

func TestTable_FindExact(t *testing.T) {
	table := NewTable(testRoutes())

	route := table.Find("/api/v1/placas")
	require.NotNil(t, route)
	assert.Equal(t, "placas", route.Module)
}

func TestTable_FindSubPath(t *testing.T) {
	table := NewTable(testRoutes())

	route := table.Find("/api/v1/clientes/42/contratos")
	require.NotNil(t, route)
	assert.Equal(t, "clientes", route.Module)
	assert.True(t, route.RequiresAuth)
}

func TestTable_LongestPrefixWins(t *testing.T) {
	table := NewTable(testRoutes())

	route := table.Find("/api/v1/placas/fotos/7")
	require.NotNil(t, route)
	assert.Equal(t, "fotos", route.Module)
}

func TestTable_OrderIndependent(t *testing.T) {
	// The same routes declared most-specific-last must resolve identically:
	// sorting at construction makes resolution independent of declaration
	// order.
	reversed := []config.Route{
		{PathPrefix: "/api/v1/placas", Module: "placas"},
		{PathPrefix: "/api/v1/placas/fotos", Module: "fotos"},
	}
	table := NewTable(reversed)

	route := table.Find("/api/v1/placas/fotos/7")
	require.NotNil(t, route)
	assert.Equal(t, "fotos", route.Module)
}

func TestTable_NoMatch(t *testing.T) {
	table := NewTable(testRoutes())

	assert.Nil(t, table.Find("/healthz"))
	assert.Nil(t, table.Find("/api/v2/placas"))
}

func TestTable_BoundaryAware(t *testing.T) {
	table := NewTable(testRoutes())

	// A shared string prefix that is not a path boundary must not match.
	assert.Nil(t, table.Find("/api/v1/placasantigas"))
}

func TestTable_Deterministic(t *testing.T) {
	table := NewTable(testRoutes())

	first := table.Find("/api/v1/placas/99")
	require.NotNil(t, first)

	for i := 0; i < 100; i++ {
		route := table.Find("/api/v1/placas/99")
		require.NotNil(t, route)
		assert.Equal(t, first.Module, route.Module)
		assert.Equal(t, first.PathPrefix, route.PathPrefix)
	}
}

func TestTable_EmptyTable(t *testing.T) {
	table := NewTable(nil)

	assert.Nil(t, table.Find("/api/v1/placas"))
	assert.Empty(t, table.Routes())
}

func TestTable_RoutesReturnsCopy(t *testing.T) {
	table := NewTable(testRoutes())

	routes := table.Routes()
	routes[0].Module = "mutated"

	route := table.Find(table.Routes()[0].PathPrefix)
	require.NotNil(t, route)
	assert.NotEqual(t, "mutated", route.Module)
}
