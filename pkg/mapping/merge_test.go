package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ordernorm/pkg/value"
)

func TestMergeObjects(t *testing.T) {
	base := obj(t, `{"order_id":"A-1","customer":{"old":true},"total":10,"supplier":"x","order_lines":[]}`)
	named := value.NewObject()
	named.Set("Customer", value.FromObject(obj(t, `{"Name":"ACME"}`)))
	named.Set("Supplier", value.FromObject(obj(t, `{"Name":"Me"}`)))
	named.Set("OrderLines", value.Array(value.Int(1)))

	got := MergeObjects(base, []string{"customer", "supplier", "order_lines"}, named)

	assert.Equal(t,
		`{"order_id":"A-1","total":10,"Customer":{"Name":"ACME"},"Supplier":{"Name":"Me"},"OrderLines":[1]}`,
		jsonOf(t, got))
	assert.True(t, base.Has("customer"), "base must not be modified")
}

func TestMergeObjects_NamedOverridesBaseKey(t *testing.T) {
	base := obj(t, `{"Customer":"stale","id":1}`)
	named := value.ObjectOf("Customer", "fresh")

	got := MergeObjects(base, nil, named)
	assert.Equal(t, `{"Customer":"fresh","id":1}`, jsonOf(t, got))
}

func TestMergeSpec_Merge(t *testing.T) {
	base := obj(t, `{"id":"A-1","customer":{},"supplier":{},"order_lines":[]}`)

	got := DefaultMergeSpec.Merge(base,
		value.FromObject(value.ObjectOf("Name", "ACME")),
		value.FromObject(value.ObjectOf("Name", "Me")),
	)

	assert.Equal(t, `{"id":"A-1","Customer":{"Name":"ACME"},"Supplier":{"Name":"Me"},"OrderLines":null}`, jsonOf(t, got))
}
