package repository

import (
	"github.com/qs-lzh/cinema-booking/internal/model"
)

// Repositories work on the document of a single Store.View or Store.Update
// call and must not outlive it.

type MovieRepo interface {
	Create(movie *model.Movie)
	GetByID(id int) (*model.Movie, bool)
	GetByTitle(title string) (*model.Movie, bool)
	ListAll() []model.Movie
}

type movieRepoDoc struct {
	doc *model.Document
}

var _ MovieRepo = (*movieRepoDoc)(nil)

func NewMovieRepo(doc *model.Document) *movieRepoDoc {
	return &movieRepoDoc{
		doc: doc,
	}
}

func (r *movieRepoDoc) Create(movie *model.Movie) {
	movie.ID = r.doc.NextID(model.CollectionMovies)
	r.doc.Movies = append(r.doc.Movies, *movie)
}

func (r *movieRepoDoc) GetByID(id int) (*model.Movie, bool) {
	for i := range r.doc.Movies {
		if r.doc.Movies[i].ID == id {
			m := r.doc.Movies[i]
			return &m, true
		}
	}
	return nil, false
}

func (r *movieRepoDoc) GetByTitle(title string) (*model.Movie, bool) {
	for i := range r.doc.Movies {
		if r.doc.Movies[i].Title == title {
			m := r.doc.Movies[i]
			return &m, true
		}
	}
	return nil, false
}

func (r *movieRepoDoc) ListAll() []model.Movie {
	return r.doc.Movies
}
