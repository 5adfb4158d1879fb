package services

import (
	"strings"

	"github.com/recipevault/recipevault/recipevault/config"
	"github.com/recipevault/recipevault/recipevault/database/models"
	"github.com/sahilm/fuzzy"
)

// RecipeSearchItems adapts a recipe slice to the fuzzy matcher, scoring
// against the title and link fields.
type RecipeSearchItems []*models.Recipe

func (r RecipeSearchItems) Len() int {
	return len(r)
}

func (r RecipeSearchItems) String(i int) string {
	return strings.ToLower(r[i].Title + " " + r[i].Link)
}

// SearchService ranks already-fetched recipes against a free-text query.
// Filtering by owner happens at the repository layer, so the service only
// ever sees rows the caller may read.
type SearchService struct {
	maxResults int
}

func NewSearchService() *SearchService {
	return &SearchService{
		maxResults: config.MaxSearchResults,
	}
}

// FilterRecipes returns the recipes matching query in relevance order.
// An empty query passes the input through untouched.
func (s *SearchService) FilterRecipes(recipes []*models.Recipe, query string) []*models.Recipe {
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return recipes
	}

	matches := fuzzy.FindFrom(query, RecipeSearchItems(recipes))

	results := make([]*models.Recipe, 0, len(matches))
	for _, match := range matches {
		results = append(results, recipes[match.Index])
		if len(results) >= s.maxResults {
			break
		}
	}

	return results
}
