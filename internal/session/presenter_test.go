package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPresenterKeepsLatest(t *testing.T) {
	var p Presenter
	assert.Equal(t, "not compiled yet", p.StatusLine())

	p.Publish(Result{Status: StatusSuccess, Summary: "ok\nmore", Artifact: "halt\n"})
	assert.Equal(t, "ok\nmore", p.StatusLine())
	assert.Equal(t, "ok", p.Latest().Headline())
	assert.Equal(t, "halt\n", p.Artifact())

	p.Publish(Result{Status: StatusFailure, Stage: StageCompilation, Message: "bad"})
	assert.Equal(t, "bad", p.StatusLine())
	assert.Empty(t, p.Artifact())
	assert.Equal(t, int64(2), p.Runs())
}
