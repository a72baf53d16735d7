package dialect

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlrecord"
)

func TestCommandAddParameter(t *testing.T) {
	t.Run("Named", func(t *testing.T) {
		cmd := NewSQLServer2005().CreateCommand("")
		p1, err := cmd.AddParameter("Name", TypeString, "Ann")
		require.NoError(t, err)
		p2, err := cmd.AddParameter("Owner.Name", TypeString, "Bob")
		require.NoError(t, err)
		assert.Equal(t, "@Name", p1.Name)
		assert.Equal(t, "@Name", p1.Placeholder)
		assert.Equal(t, "@Name_2", p2.Name)
		assert.Equal(t, "@Name_2", p2.Placeholder)
		assert.Same(t, p2, cmd.Parameter("@Name_2"))
		assert.Nil(t, cmd.Parameter("@Missing"))
		assert.Equal(t, map[string]any{"@Name": "Ann", "@Name_2": "Bob"}, cmd.Values())
	})
	t.Run("Ordinal", func(t *testing.T) {
		cmd := NewPostgres().CreateCommand("")
		p1, err := cmd.AddParameter("Name", TypeString, "Ann")
		require.NoError(t, err)
		p2, err := cmd.AddParameter("Age", TypeInt32, nil)
		require.NoError(t, err)
		assert.Equal(t, "$1", p1.Placeholder)
		assert.Equal(t, "$2", p2.Placeholder)
		assert.Equal(t, ":Name", p1.Name)
		assert.Equal(t, []any{"Ann", nil}, cmd.Args())
		assert.Equal(t, map[string]any{":Name": "Ann", ":Age": nil}, cmd.Values())
	})
	t.Run("Positional", func(t *testing.T) {
		cmd := NewMySQL().CreateCommand("")
		p, err := cmd.AddParameter("Name", TypeString, "Ann")
		require.NoError(t, err)
		assert.Equal(t, "?", p.Placeholder)
		assert.Equal(t, "@Name", p.Name)
	})
	t.Run("InvalidName", func(t *testing.T) {
		cmd := NewSQLite().CreateCommand("")
		_, err := cmd.AddParameter("", TypeString, "Ann")
		assert.True(t, sqlrecord.IsConfigurationError(err))
		assert.Empty(t, cmd.Parameters)
	})
}

func TestCommandFill(t *testing.T) {
	cmd := NewSQLServer2005().CreateCommand("update [People] set [Name] = @Name, [Age] = @Age where [Id] = @Id")
	_, err := cmd.AddParameter("Name", TypeString, nil)
	require.NoError(t, err)
	_, err = cmd.AddParameter("Age", TypeInt32, nil)
	require.NoError(t, err)
	_, err = cmd.AddParameter("Id", TypeInt64, int64(7))
	require.NoError(t, err)

	require.NoError(t, cmd.Fill(SourceMap{"name": "Ann", "Age": "42"}))
	assert.Equal(t, "Ann", cmd.Parameter("@Name").Value)
	assert.Equal(t, int64(42), cmd.Parameter("@Age").Value)
	assert.Equal(t, int64(7), cmd.Parameter("@Id").Value, "missing properties keep their value")

	require.NoError(t, cmd.Fill(SourceMap{"Age": ""}))
	assert.Nil(t, cmd.Parameter("@Age").Value)

	err = cmd.Fill(SourceMap{"Age": "forty"})
	require.Error(t, err)
	assert.True(t, sqlrecord.IsCastError(err))
	assert.True(t, errors.Is(err, sqlrecord.ErrCast))
	var ce *sqlrecord.CastError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "Age", ce.Parameter)
	assert.Equal(t, "int32", ce.Type)
}

func TestCommandString(t *testing.T) {
	cmd := NewSQLite().CreateCommand("select 1")
	assert.Equal(t, "select 1", cmd.String())
	_, err := cmd.AddParameter("Id", TypeInt32, 5)
	require.NoError(t, err)
	assert.Equal(t, "select 1 [@Id=5]", cmd.String())
}

func TestCoerce(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	tests := []struct {
		name string
		in   any
		typ  PortableType
		want any
	}{
		{"Nil", nil, TypeInt32, nil},
		{"EmptyIsNull", "", TypeInt32, nil},
		{"EmptyString", "", TypeString, ""},
		{"IntToString", int32(7), TypeString, "7"},
		{"StringToInt", " 42 ", TypeInt32, int64(42)},
		{"WholeFloatToInt", 3.0, TypeInt16, int64(3)},
		{"StringToBool", "true", TypeBoolean, true},
		{"IntToBool", 1, TypeBoolean, true},
		{"StringToDouble", "1.5", TypeDouble, 1.5},
		{"IntToDecimal", 2, TypeDecimal, 2.0},
		{"Date", "2024-01-02", TypeDate, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"DateTime", "2024-01-02 03:04:05", TypeDateTime, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"GuidString", id.String(), TypeGUID, id},
		{"GuidBytes", id[:], TypeGUID, id},
		{"Binary", "abc", TypeBinary, []byte("abc")},
		{"Unknown", struct{}{}, TypeUnknown, struct{}{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Coerce(tt.in, tt.typ)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	failures := []struct {
		name string
		in   any
		typ  PortableType
	}{
		{"ByteOverflow", 300, TypeByte},
		{"Int32Overflow", int64(1) << 40, TypeInt32},
		{"FractionToInt", 3.5, TypeInt32},
		{"NotABool", "maybe", TypeBoolean},
		{"BoolOutOfRange", 2, TypeBoolean},
		{"NotAGuid", "xyz", TypeGUID},
		{"NotATime", "yesterday", TypeDateTime},
		{"NotBinary", 12, TypeBinary},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Coerce(tt.in, tt.typ)
			assert.True(t, sqlrecord.IsCastError(err), "got %v", err)
		})
	}
}
