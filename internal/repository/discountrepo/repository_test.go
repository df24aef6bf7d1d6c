package discountrepo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gojoyas/internal/domain"
)

func TestProductIDsParam_AllProductsRuleBindsEmptyArray(t *testing.T) {
	var rule domain.DiscountRule
	require.NoError(t, json.Unmarshal([]byte(`{"code":"VERAO","kind":"percentage","value":"10","appliesTo":"all","isActive":true}`), &rule))
	require.Nil(t, rule.ProductIDs)

	v, err := productIDsParam(rule.ProductIDs).Value()
	require.NoError(t, err)
	assert.Equal(t, "{}", v)
}

func TestProductIDsParam_KeepsListedProducts(t *testing.T) {
	v, err := productIDsParam([]string{"p1", "p2"}).Value()
	require.NoError(t, err)
	assert.Equal(t, `{"p1","p2"}`, v)
}
