// internal/store/elasticsearch.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"talent-matching/internal/common/errors"
	"talent-matching/internal/common/logger"
	"talent-matching/internal/matching/profile"
	"talent-matching/internal/models"
)

// ElasticsearchStore serves pool fetches from the platform's search
// indexes. Documents are validated against the entity schema before decode;
// a malformed document fails the individual record, not the whole fetch.
type ElasticsearchStore struct {
	client         *elasticsearch.Client
	candidateIndex string
	jobIndex       string
	logger         logger.Logger
}

func NewElasticsearchStore(client *elasticsearch.Client, candidateIndex, jobIndex string, log logger.Logger) *ElasticsearchStore {
	return &ElasticsearchStore{
		client:         client,
		candidateIndex: candidateIndex,
		jobIndex:       jobIndex,
		logger:         log.WithFields(map[string]interface{}{"component": "elasticsearch-store"}),
	}
}

func (s *ElasticsearchStore) GetCandidate(ctx context.Context, id string) (*models.Candidate, error) {
	raw, err := s.getDocument(ctx, s.candidateIndex, id)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errors.NewEntityNotFoundError(string(models.KindCandidate), id)
	}

	var c models.Candidate
	if err := decodeSource(models.KindCandidate, raw, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *ElasticsearchStore) GetJob(ctx context.Context, id string) (*models.Job, error) {
	raw, err := s.getDocument(ctx, s.jobIndex, id)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errors.NewEntityNotFoundError(string(models.KindJob), id)
	}

	var j models.Job
	if err := decodeSource(models.KindJob, raw, &j); err != nil {
		return nil, err
	}
	return &j, nil
}

func (s *ElasticsearchStore) ListCandidates(ctx context.Context, c Criteria) ([]models.Candidate, error) {
	sources, err := s.search(ctx, s.candidateIndex, "skills", c)
	if err != nil {
		return nil, err
	}

	out := make([]models.Candidate, 0, len(sources))
	for _, src := range sources {
		var cand models.Candidate
		if err := decodeSource(models.KindCandidate, src, &cand); err != nil {
			s.logger.Warn("skipping malformed candidate document", map[string]interface{}{
				"error": err,
			})
			continue
		}
		out = append(out, cand)
	}
	return out, nil
}

func (s *ElasticsearchStore) ListJobs(ctx context.Context, c Criteria) ([]models.Job, error) {
	sources, err := s.search(ctx, s.jobIndex, "requiredSkills", c)
	if err != nil {
		return nil, err
	}

	out := make([]models.Job, 0, len(sources))
	for _, src := range sources {
		var job models.Job
		if err := decodeSource(models.KindJob, src, &job); err != nil {
			s.logger.Warn("skipping malformed job document", map[string]interface{}{
				"error": err,
			})
			continue
		}
		out = append(out, job)
	}
	return out, nil
}

// buildPoolQuery builds the bool-filtered search body for a pool fetch.
// Sorted by id so pagination over repeated calls stays stable.
func buildESPoolQuery(skillsField string, c Criteria) map[string]interface{} {
	filterClauses := []interface{}{}

	if len(c.Skills) > 0 {
		filterClauses = append(filterClauses, map[string]interface{}{
			"terms": map[string]interface{}{skillsField: c.Skills},
		})
	}
	if c.Location != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"location": strings.ToLower(c.Location)},
		})
	}
	if c.RemoteOnly {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"remoteOk": true},
		})
	}

	query := map[string]interface{}{"match_all": map[string]interface{}{}}
	if len(filterClauses) > 0 {
		query = map[string]interface{}{
			"bool": map[string]interface{}{"filter": filterClauses},
		}
	}

	return map[string]interface{}{
		"query": query,
		"sort":  []interface{}{map[string]interface{}{"id": "asc"}},
	}
}

func (s *ElasticsearchStore) search(ctx context.Context, index, skillsField string, c Criteria) ([]map[string]interface{}, error) {
	body, _ := json.Marshal(buildESPoolQuery(skillsField, c))

	size := c.Limit
	if size <= 0 {
		size = 20
	}

	req := esapi.SearchRequest{
		Index: []string{index},
		Body:  strings.NewReader(string(body)),
		Size:  &size,
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, errors.NewSearchQueryFailedError("pool-search", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return nil, errors.NewIndexNotFoundError(index)
	}
	if res.IsError() {
		return nil, errors.NewSearchQueryFailedError("pool-search", fmt.Errorf("status %s", res.Status()))
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source map[string]interface{} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, errors.NewSearchQueryFailedError("pool-search", err)
	}

	sources := make([]map[string]interface{}, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		sources = append(sources, hit.Source)
	}
	return sources, nil
}

func (s *ElasticsearchStore) getDocument(ctx context.Context, index, id string) (map[string]interface{}, error) {
	req := esapi.GetRequest{Index: index, DocumentID: id}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, errors.NewSearchQueryFailedError("get-document", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return nil, nil
	}
	if res.IsError() {
		return nil, errors.NewSearchQueryFailedError("get-document", fmt.Errorf("status %s", res.Status()))
	}

	var r struct {
		Source map[string]interface{} `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, errors.NewSearchQueryFailedError("get-document", err)
	}
	return r.Source, nil
}

// decodeSource validates an untyped document and decodes it into the typed
// record for its kind.
func decodeSource(kind models.EntityKind, src map[string]interface{}, dst interface{}) error {
	if err := profile.ValidateRaw(kind, src); err != nil {
		return err
	}
	data, err := json.Marshal(src)
	if err != nil {
		return errors.NewInvalidProfileError("", fmt.Sprintf("encode document: %v", err))
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return errors.NewInvalidProfileError("", fmt.Sprintf("decode document: %v", err))
	}
	return nil
}
