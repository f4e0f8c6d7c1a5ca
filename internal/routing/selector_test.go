package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesleywu/nlroute/internal/routing/types"
	"github.com/wesleywu/nlroute/internal/rtlabel"
	"github.com/wesleywu/nlroute/internal/rtnl"
)

func TestParseTable(t *testing.T) {
	labels := rtlabel.New(nil, nil, map[uint32]string{100: "isp1", 254: "main"})

	tests := []struct {
		arg     string
		expect  TableSelection
		wantErr bool
	}{
		{"", TableSelection{Kind: TableMainOnly}, false},
		{"main", TableSelection{Kind: TableMainOnly}, false},
		{"all", TableSelection{Kind: TableAll}, false},
		{"100", TableSelection{Kind: TableID, ID: 100}, false},
		{"0x10", TableSelection{Kind: TableID, ID: 16}, false},
		{"255", TableSelection{Kind: TableID, ID: 255}, false},
		{"70000", TableSelection{Kind: TableID, ID: 70000}, false},
		{"isp1", TableSelection{Kind: TableID, ID: 100}, false},
		{"nosuch", TableSelection{}, true},
		{"-1", TableSelection{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := ParseTable(tt.arg, labels)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expect, got)
		})
	}
}

func TestParseTableWithoutNames(t *testing.T) {
	_, err := ParseTable("isp1", nil)
	assert.Error(t, err)
}

func TestTableSelectionString(t *testing.T) {
	assert.Equal(t, "main", TableSelection{Kind: TableMainOnly}.String())
	assert.Equal(t, "all", TableSelection{Kind: TableAll}.String())
	assert.Equal(t, "1000", TableSelection{Kind: TableID, ID: 1000}.String())
}

func TestParseFamily(t *testing.T) {
	for name, expect := range map[string]uint8{
		"":      types.FamilyUnspec,
		"inet":  types.FamilyINET,
		"4":     types.FamilyINET,
		"inet6": types.FamilyINET6,
		"6":     types.FamilyINET6,
	} {
		got, err := ParseFamily(name)
		require.NoError(t, err, name)
		assert.Equal(t, expect, got, name)
	}

	_, err := ParseFamily("link")
	assert.Error(t, err)
}

func TestAcceptHeader(t *testing.T) {
	const familyBridge = 7

	tests := []struct {
		name   string
		sel    Selector
		header rtnl.Header
		expect bool
	}{
		{"ipv4 main", Selector{}, rtnl.Header{Family: types.FamilyINET, Table: 254}, true},
		{"ipv6 main", Selector{}, rtnl.Header{Family: types.FamilyINET6, Table: 254}, true},
		{"other family", Selector{}, rtnl.Header{Family: familyBridge, Table: 254}, false},
		{"unspec family", Selector{}, rtnl.Header{Family: types.FamilyUnspec, Table: 254}, false},
		{"local rejected by default", Selector{}, rtnl.Header{Family: types.FamilyINET, Table: 255}, false},
		{"local kept with all", Selector{Table: TableSelection{Kind: TableAll}}, rtnl.Header{Family: types.FamilyINET, Table: 255}, true},
		{"local kept for explicit id", Selector{Table: TableSelection{Kind: TableID, ID: 255}}, rtnl.Header{Family: types.FamilyINET, Table: 255}, true},
		{"family match", Selector{Family: types.FamilyINET6}, rtnl.Header{Family: types.FamilyINET6}, true},
		{"family mismatch", Selector{Family: types.FamilyINET6}, rtnl.Header{Family: types.FamilyINET}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, tt.sel.AcceptHeader(tt.header))
		})
	}
}

func TestAcceptRoute(t *testing.T) {
	sel := Selector{Table: TableSelection{Kind: TableID, ID: 1000}}
	assert.True(t, sel.AcceptRoute(&types.Route{Table: 1000}))
	assert.False(t, sel.AcceptRoute(&types.Route{Table: 254}))

	all := Selector{Table: TableSelection{Kind: TableAll}}
	assert.True(t, all.AcceptRoute(&types.Route{Table: 254}))
}
