package recent

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(r *Registry) {
	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	n := 0
	r.now = func() time.Time {
		n++
		return t0.Add(time.Duration(n) * time.Minute)
	}
}

func TestListEmpty(t *testing.T) {
	r := Open(t.TempDir())
	assert.Empty(t, r.List(KindA2L))
	assert.NotNil(t, r.List(KindELF))
}

func TestRecordDedupeAndPrepend(t *testing.T) {
	r := Open(t.TempDir())
	fixedClock(r)

	_, err := r.Record(KindA2L, Entry{Name: "a.a2l", Location: "/x/a.a2l"})
	require.NoError(t, err)
	_, err = r.Record(KindA2L, Entry{Name: "b.a2l", Location: "/x/b.a2l"})
	require.NoError(t, err)
	list, err := r.Record(KindA2L, Entry{Name: "a.a2l", Location: "/x/a.a2l"})
	require.NoError(t, err)

	require.Len(t, list, 2)
	assert.Equal(t, "a.a2l", list[0].Name)
	assert.Equal(t, "b.a2l", list[1].Name)
	assert.True(t, list[0].OpenedAt.After(list[1].OpenedAt))
	assert.Equal(t, list, r.List(KindA2L))
}

func TestRecordSameNameDifferentLocation(t *testing.T) {
	r := Open(t.TempDir())

	_, err := r.Record(KindA2L, Entry{Name: "cal.a2l", Location: "/one/cal.a2l"})
	require.NoError(t, err)
	list, err := r.Record(KindA2L, Entry{Name: "cal.a2l", Location: "/two/cal.a2l"})
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestRecordTruncates(t *testing.T) {
	r := Open(t.TempDir())
	for i := 0; i < MaxEntries+3; i++ {
		_, err := r.Record(KindELF, Entry{Name: fmt.Sprintf("f%d.elf", i), Location: fmt.Sprintf("/bin/f%d.elf", i)})
		require.NoError(t, err)
	}

	list := r.List(KindELF)
	require.Len(t, list, MaxEntries)
	assert.Equal(t, fmt.Sprintf("f%d.elf", MaxEntries+2), list[0].Name)
}

func TestRecordDropsEntriesWithoutLocation(t *testing.T) {
	r := Open(t.TempDir())

	list, err := r.Record(KindA2L, Entry{Name: "pasted.a2l", Location: "  "})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Empty(t, r.List(KindA2L))
}

func TestKindsAreSeparate(t *testing.T) {
	r := Open(t.TempDir())

	_, err := r.Record(KindA2L, Entry{Name: "a.a2l", Location: "/a.a2l"})
	require.NoError(t, err)
	assert.Len(t, r.List(KindA2L), 1)
	assert.Empty(t, r.List(KindELF))

	_, err = r.Record(Kind("hex"), Entry{Name: "a.hex", Location: "/a.hex"})
	assert.Error(t, err)
}

func TestMalformedReadsEmpty(t *testing.T) {
	dir := t.TempDir()
	r := Open(dir)
	require.NoError(t, r.d.Write(key(KindA2L), []byte("{not json")))

	assert.Empty(t, Open(dir).List(KindA2L))

	list, err := r.Record(KindA2L, Entry{Name: "a.a2l", Location: "/a.a2l"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestPersistsAcrossRegistries(t *testing.T) {
	dir := t.TempDir()
	_, err := Open(dir).Record(KindELF, Entry{Name: "ecu.elf", Location: "/fw/ecu.elf"})
	require.NoError(t, err)

	list := Open(dir).List(KindELF)
	require.Len(t, list, 1)
	assert.Equal(t, "/fw/ecu.elf", list[0].Location)
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"a2l", KindA2L, false},
		{"ELF", KindELF, false},
		{" a2l ", KindA2L, false},
		{"hex", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
