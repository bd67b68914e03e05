package artifacts

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jonathan/candidate-tracker/internal/rendering"
	"github.com/jonathan/candidate-tracker/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRenderer struct {
	html string
	err  error
}

func (f *fakeRenderer) RenderHTMLToPDF(_ context.Context, html string) ([]byte, error) {
	f.html = html
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.4 fake"), nil
}

type putCall struct {
	bucket, key, contentType string
	body                     []byte
}

type fakeStore struct {
	puts []putCall
	err  error
}

func (f *fakeStore) Put(_ context.Context, bucket, key, contentType string, body []byte) error {
	if f.err != nil {
		return f.err
	}
	f.puts = append(f.puts, putCall{bucket, key, contentType, body})
	return nil
}

func (f *fakeStore) PublicURL(bucket, key string) string {
	return storage.PublicURL("http://localhost:9000", bucket, key)
}

var fixedNow = time.UnixMilli(1700000000123)

func newTestGenerator(r rendering.Renderer, s ObjectStore) *Generator {
	g := NewGenerator(r, s, nil)
	g.now = func() time.Time { return fixedNow }
	return g
}

func TestGenerate_Questionnaire(t *testing.T) {
	renderer := &fakeRenderer{}
	store := &fakeStore{}
	g := newTestGenerator(renderer, store)

	url, err := g.Generate(context.Background(), rendering.KindQuestionnaire, rendering.Document{
		CandidateID:   "65a1",
		CandidateName: "Sara Benali",
		Answers:       map[string]string{"presentezVous": "Bonjour"},
	})
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000/qualified-candidats/form-65a1-1700000000123.pdf", url)
	require.Len(t, store.puts, 1)
	assert.Equal(t, storage.BucketQualified, store.puts[0].bucket)
	assert.Equal(t, ContentTypePDF, store.puts[0].contentType)
	assert.Equal(t, []byte("%PDF-1.4 fake"), store.puts[0].body)
	assert.Contains(t, renderer.html, "Bonjour")
}

func TestGenerate_EvaluationKey(t *testing.T) {
	store := &fakeStore{}
	g := newTestGenerator(&fakeRenderer{}, store)

	url, err := g.Generate(context.Background(), rendering.KindEvaluation, rendering.Document{CandidateID: "65a1"})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(url, "/qualified-candidats/eval-65a1-1700000000123.pdf"))
}

func TestGenerate_RenderFailureUploadsNothing(t *testing.T) {
	store := &fakeStore{}
	renderErr := &rendering.RenderError{Message: "browser printing failed", Cause: errors.New("no chrome")}
	g := newTestGenerator(&fakeRenderer{err: renderErr}, store)

	_, err := g.Generate(context.Background(), rendering.KindQuestionnaire, rendering.Document{CandidateID: "x"})
	require.Error(t, err)

	var re *rendering.RenderError
	assert.ErrorAs(t, err, &re)
	assert.Empty(t, store.puts)
}

func TestGenerate_UploadFailure(t *testing.T) {
	g := newTestGenerator(&fakeRenderer{}, &fakeStore{err: errors.New("connection reset")})

	url, err := g.Generate(context.Background(), rendering.KindQuestionnaire, rendering.Document{CandidateID: "x"})
	require.Error(t, err)
	assert.Empty(t, url)

	var uploadErr *UploadError
	require.ErrorAs(t, err, &uploadErr)
	assert.Equal(t, storage.BucketQualified, uploadErr.Bucket)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestStoreReport(t *testing.T) {
	store := &fakeStore{}
	g := newTestGenerator(&fakeRenderer{}, store)

	url, err := g.StoreReport(context.Background(), "65a1", "Rapport Final.DOCX", "application/msword", []byte("doc"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/rapports-stage/rapport-65a1-1700000000123.docx", url)
	assert.Equal(t, "application/msword", store.puts[0].contentType)
}

func TestStoreCV(t *testing.T) {
	store := &fakeStore{}
	g := newTestGenerator(&fakeRenderer{}, store)

	key, err := g.StoreCV(context.Background(), `C:\Users\sara\cv.pdf`, []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "1700000000123-cv.pdf", key)
	assert.Equal(t, storage.BucketCVs, store.puts[0].bucket)
}
