package repository

import (
	"github.com/qs-lzh/cinema-booking/internal/model"
)

type ShowtimeRepo interface {
	Create(session *model.Session)
	GetByID(id int) (*model.Session, bool)
	GetByMovieID(movieID int) []model.Session
	ListAll() []model.Session
}

type showtimeRepoDoc struct {
	doc *model.Document
}

var _ ShowtimeRepo = (*showtimeRepoDoc)(nil)

func NewShowtimeRepo(doc *model.Document) *showtimeRepoDoc {
	return &showtimeRepoDoc{
		doc: doc,
	}
}

func (r *showtimeRepoDoc) Create(session *model.Session) {
	session.ID = r.doc.NextID(model.CollectionSessions)
	r.doc.Sessions = append(r.doc.Sessions, *session)
}

func (r *showtimeRepoDoc) GetByID(id int) (*model.Session, bool) {
	for i := range r.doc.Sessions {
		if r.doc.Sessions[i].ID == id {
			s := r.doc.Sessions[i]
			return &s, true
		}
	}
	return nil, false
}

func (r *showtimeRepoDoc) GetByMovieID(movieID int) []model.Session {
	sessions := []model.Session{}
	for _, s := range r.doc.Sessions {
		if s.MovieID == movieID {
			sessions = append(sessions, s)
		}
	}
	return sessions
}

func (r *showtimeRepoDoc) ListAll() []model.Session {
	return r.doc.Sessions
}
