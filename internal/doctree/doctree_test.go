package doctree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderNesting(t *testing.T) {
	b := NewBuilder()
	b.Text("Preface.")
	b.Heading(1, "Cats")
	b.Text("Intro.")
	b.Heading(2, "Diet")
	b.Text("Meat.")
	b.Text("Water.")
	b.Heading(3, "Fish")
	b.Heading(2, "Sleep")
	b.Heading(1, "Dogs")
	o := b.Outline("pets")

	assert.Equal(t, "pets", o.Title)
	require.Len(t, o.Sections, 3)
	assert.Equal(t, "", o.Sections[0].Heading)
	assert.Equal(t, "Preface.", o.Sections[0].Text)

	cats := o.Sections[1]
	assert.Equal(t, "Intro.", cats.Text)
	require.Len(t, cats.Sections, 2)
	assert.Equal(t, "Meat.\n\nWater.", cats.Sections[0].Text)
	assert.Equal(t, "Fish", cats.Sections[0].Sections[0].Heading)
	assert.Equal(t, "Sleep", cats.Sections[1].Heading)
	assert.Equal(t, "Dogs", o.Sections[2].Heading)
}

func TestBuilderSkippedLevels(t *testing.T) {
	b := NewBuilder()
	b.Heading(3, "Deep first")
	b.Heading(1, "Top")
	o := b.Outline("")
	require.Len(t, o.Sections, 2)
}

func TestWalkBreadcrumbs(t *testing.T) {
	o := &Outline{Sections: []*Section{
		{Heading: "A", Sections: []*Section{{Heading: "A1"}, {Heading: "A2", Sections: []*Section{{Text: "leaf"}}}}},
	}}
	var got [][]string
	o.Walk(func(_ *Section, bc []string) { got = append(got, bc) })
	assert.Equal(t, [][]string{nil, {"A"}, {"A"}, {"A", "A2"}}, got)
}

func TestPlainText(t *testing.T) {
	b := NewBuilder()
	b.Heading(1, "Cats")
	b.Text("Intro.")
	b.Heading(2, "Diet")
	b.Text("Meat.")
	o := b.Outline("x")

	assert.Equal(t, "# Cats\n\nIntro.\n\n## Diet\n\nMeat.", o.PlainText())
	assert.True(t, o.HasText())
	assert.False(t, (&Outline{Sections: []*Section{{Heading: "only"}}}).HasText())
}
