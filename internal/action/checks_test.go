package action

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/daa/internal/physical"
)

func obs(values map[string]any) *physical.Observation {
	return &physical.Observation{Values: values}
}

func TestStatusIs(t *testing.T) {
	check := StatusIs(200)
	assert.Equal(t, "status==200", check.Claim)

	assert.Nil(t, check.Eval(nil, obs(map[string]any{"status": int64(200)})))

	m := check.Eval(nil, obs(map[string]any{"status": int64(500)}))
	require.NotNil(t, m)
	assert.Equal(t, "200", m.Expected)
	assert.Equal(t, "500", m.Actual)

	m = check.Eval(nil, obs(map[string]any{}))
	require.NotNil(t, m)
	assert.Equal(t, "no status observed", m.Actual)
}

func TestStatusIn(t *testing.T) {
	check := StatusIn(200, 201)
	assert.Equal(t, "status in {200,201}", check.Claim)

	assert.Nil(t, check.Eval(nil, obs(map[string]any{"status": int64(201)})))

	m := check.Eval(nil, obs(map[string]any{"status": int64(404)}))
	require.NotNil(t, m)
	assert.Equal(t, "200|201", m.Expected)
}

func TestStatusNot(t *testing.T) {
	check := StatusNot(200)
	assert.Equal(t, "status!=200", check.Claim)

	assert.Nil(t, check.Eval(nil, obs(map[string]any{"status": int64(500)})))
	assert.NotNil(t, check.Eval(nil, obs(map[string]any{"status": int64(200)})))
}

func TestCountGreaterThan(t *testing.T) {
	check := CountGreaterThan(0)
	assert.Equal(t, "count>0", check.Claim)

	assert.Nil(t, check.Eval(nil, obs(map[string]any{"count": int64(3)})))

	m := check.Eval(nil, obs(map[string]any{"count": int64(0)}))
	require.NotNil(t, m)
	assert.Equal(t, ">0", m.Expected)
	assert.Equal(t, "0", m.Actual)
}

func TestTextContains(t *testing.T) {
	check := TextContains("title", "Amazon")
	assert.Equal(t, `title contains "Amazon"`, check.Claim)

	assert.Nil(t, check.Eval(nil, obs(map[string]any{"title": "Amazon.com. Spend less."})))
	assert.NotNil(t, check.Eval(nil, obs(map[string]any{"title": "Page Not Found"})))
	assert.NotNil(t, check.Eval(nil, obs(map[string]any{})))
}

func TestFlagAndVisible(t *testing.T) {
	assert.Nil(t, FlagIs("clicked", true).Eval(nil, obs(map[string]any{"clicked": true})))
	assert.NotNil(t, FlagIs("clicked", true).Eval(nil, obs(map[string]any{"clicked": false})))

	check := VisibleIs(true)
	assert.Equal(t, "visible==true", check.Claim)
	assert.Nil(t, check.Eval(nil, obs(map[string]any{"visible": true})))
}

func TestJSONFieldEquals(t *testing.T) {
	check := JSONFieldEquals("name", "iPhone 15")
	assert.Equal(t, "json.name==iPhone 15", check.Claim)

	body := map[string]any{"json": map[string]any{"name": "iPhone 15"}}
	assert.Nil(t, check.Eval(nil, obs(body)))

	wrong := map[string]any{"json": map[string]any{"name": "iPhone 14"}}
	m := check.Eval(nil, obs(wrong))
	require.NotNil(t, m)
	assert.Equal(t, "iPhone 14", m.Actual)

	m = check.Eval(nil, obs(map[string]any{"json": map[string]any{}}))
	require.NotNil(t, m)
	assert.Equal(t, `field "name" absent`, m.Actual)
}

func TestJSONHasField(t *testing.T) {
	check := JSONHasField("id")
	assert.Equal(t, `json has "id"`, check.Claim)

	assert.Nil(t, check.Eval(nil, obs(map[string]any{"json": map[string]any{"id": "x"}})))
	assert.NotNil(t, check.Eval(nil, obs(map[string]any{"json": map[string]any{}})))
	assert.NotNil(t, check.Eval(nil, obs(map[string]any{})))
}

func TestAndConjoinsClaimsAndShortCircuits(t *testing.T) {
	check := And(StatusIs(200), JSONHasField("id"))
	assert.Equal(t, `status==200 AND json has "id"`, check.Claim)

	good := map[string]any{"status": int64(200), "json": map[string]any{"id": "x"}}
	assert.Nil(t, check.Eval(nil, obs(good)))

	// First false clause reports; later clauses unevaluated.
	bad := map[string]any{"status": int64(500), "json": map[string]any{}}
	m := check.Eval(nil, obs(bad))
	require.NotNil(t, m)
	assert.Equal(t, "500", m.Actual)
}
