package schema_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlrecord"
	"github.com/syssam/sqlrecord/dialect"
	"github.com/syssam/sqlrecord/schema"
)

type person struct {
	ID      int
	Name    string
	Age     *int
	Born    time.Time
	Token   uuid.UUID
	Balance float32
}

func personMapping() *schema.Mapping[person] {
	m := schema.NewMapping[person]()
	schema.Prop(m, "Id", func(p *person) *int { return &p.ID })
	schema.Prop(m, "Name", func(p *person) *string { return &p.Name })
	schema.NullableProp(m, "Age", func(p *person) **int { return &p.Age })
	schema.Prop(m, "Born", func(p *person) *time.Time { return &p.Born })
	schema.Prop(m, "Token", func(p *person) *uuid.UUID { return &p.Token })
	schema.Prop(m, "Balance", func(p *person) *float32 { return &p.Balance })
	return m
}

func TestMappingGet(t *testing.T) {
	age := 30
	p := &person{ID: 1, Name: "Ann", Age: &age}
	e := personMapping().Bind(p)

	v, ok := e.Get("name")
	require.True(t, ok)
	assert.Equal(t, "Ann", v)
	v, ok = e.Get("Age")
	require.True(t, ok)
	assert.Equal(t, 30, v)

	p.Age = nil
	v, ok = e.Get("Age")
	require.True(t, ok)
	assert.Nil(t, v)

	_, ok = e.Get("Missing")
	assert.False(t, ok)
}

func TestMappingSet(t *testing.T) {
	p := &person{}
	e := personMapping().Bind(p)
	id := uuid.New()

	require.NoError(t, e.Set("Id", int64(42)))
	require.NoError(t, e.Set("Name", []byte("Ann")))
	require.NoError(t, e.Set("Age", "31"))
	require.NoError(t, e.Set("Born", "2001-02-03"))
	require.NoError(t, e.Set("Token", id.String()))
	require.NoError(t, e.Set("Balance", 2.5))

	assert.Equal(t, 42, p.ID)
	assert.Equal(t, "Ann", p.Name)
	require.NotNil(t, p.Age)
	assert.Equal(t, 31, *p.Age)
	assert.Equal(t, time.Date(2001, 2, 3, 0, 0, 0, 0, time.UTC), p.Born)
	assert.Equal(t, id, p.Token)
	assert.Equal(t, float32(2.5), p.Balance)

	require.NoError(t, e.Set("Age", nil))
	assert.Nil(t, p.Age)
	require.NoError(t, e.Set("Id", nil))
	assert.Zero(t, p.ID)
}

func TestMappingSetErrors(t *testing.T) {
	e := personMapping().Bind(&person{})

	err := e.Set("Id", "forty")
	require.Error(t, err)
	assert.True(t, sqlrecord.IsCastError(err))
	var ce *sqlrecord.CastError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "Id", ce.Parameter)

	err = e.Set("Missing", 1)
	require.Error(t, err)
}

type accountID uint32

type account struct {
	ID     accountID
	Seq    uint64
	Small  int8
	Code   uint16
	Kind   kind
	Parent *uint
}

type kind string

func accountMapping() *schema.Mapping[account] {
	m := schema.NewMapping[account]()
	schema.Prop(m, "Id", func(a *account) *accountID { return &a.ID })
	schema.Prop(m, "Seq", func(a *account) *uint64 { return &a.Seq })
	schema.Prop(m, "Small", func(a *account) *int8 { return &a.Small })
	schema.Prop(m, "Code", func(a *account) *uint16 { return &a.Code })
	schema.Prop(m, "Kind", func(a *account) *kind { return &a.Kind })
	schema.NullableProp(m, "Parent", func(a *account) **uint { return &a.Parent })
	return m
}

func TestMappingSetIntegerKinds(t *testing.T) {
	a := &account{}
	e := accountMapping().Bind(a)

	require.NoError(t, e.Set("Id", int64(1)))
	require.NoError(t, e.Set("Seq", int64(1<<40)))
	require.NoError(t, e.Set("Small", "-12"))
	require.NoError(t, e.Set("Code", "65535"))
	require.NoError(t, e.Set("Kind", "savings"))
	require.NoError(t, e.Set("Parent", int32(9)))

	assert.Equal(t, accountID(1), a.ID)
	assert.Equal(t, uint64(1<<40), a.Seq)
	assert.Equal(t, int8(-12), a.Small)
	assert.Equal(t, uint16(65535), a.Code)
	assert.Equal(t, kind("savings"), a.Kind)
	require.NotNil(t, a.Parent)
	assert.Equal(t, uint(9), *a.Parent)

	require.NoError(t, e.Set("Id", nil))
	assert.Zero(t, a.ID)
	require.NoError(t, e.Set("Parent", nil))
	assert.Nil(t, a.Parent)
}

func TestMappingSetIntegerKindsOutOfRange(t *testing.T) {
	e := accountMapping().Bind(&account{})
	tests := []struct {
		property string
		value    any
	}{
		{"Id", int64(-1)},
		{"Id", int64(1) << 33},
		{"Small", int64(200)},
		{"Code", int64(70000)},
		{"Seq", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.property, func(t *testing.T) {
			err := e.Set(tt.property, tt.value)
			require.Error(t, err)
			assert.True(t, sqlrecord.IsCastError(err))
			var ce *sqlrecord.CastError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.property, ce.Parameter)
		})
	}
}

func TestMappingSetUnsupportedKind(t *testing.T) {
	type queue struct{ C chan int }
	m := schema.NewMapping[queue]()
	schema.Prop(m, "C", func(q *queue) *chan int { return &q.C })
	err := m.Bind(&queue{}).Set("C", int64(1))
	assert.True(t, sqlrecord.IsCastError(err))
}

func TestMappingProperties(t *testing.T) {
	m := personMapping()
	assert.Equal(t, []string{"Age", "Balance", "Born", "Id", "Name", "Token"}, m.Properties())
	m.Map("NAME", nil, nil)
	assert.Len(t, m.Properties(), 6)
}

func TestMappingBuildInsert(t *testing.T) {
	tbl := schema.NewTable("People", dialect.NewSQLServer2005(dialect.WithIdentityRetrieval(false)),
		schema.NewField("Id", dialect.TypeInt32, schema.Primary, schema.AutoIncrement),
		schema.NewField("Name", dialect.TypeString),
		schema.NewField("Age", dialect.TypeInt32, schema.Nullable),
	)
	cmd, err := tbl.BuildInsert(personMapping().Bind(&person{Name: "Ann"}))
	require.NoError(t, err)
	assert.Equal(t, "insert into [People] ([Name], [Age]) values (@Name, @Age);", cmd.Text)
	assert.Nil(t, cmd.Parameters[1].Value)
}

func TestValues(t *testing.T) {
	v := schema.Values{"Name": "Ann"}
	got, ok := v.Get("NAME")
	require.True(t, ok)
	assert.Equal(t, "Ann", got)

	require.NoError(t, v.Set("name", "Bob"))
	assert.Equal(t, schema.Values{"Name": "Bob"}, v)
	require.NoError(t, v.Set("Age", 3))
	assert.Len(t, v, 2)
}
