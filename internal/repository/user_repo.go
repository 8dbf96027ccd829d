package repository

import (
	"slices"

	"github.com/qs-lzh/cinema-booking/internal/model"
)

type UserRepo interface {
	Create(user *model.User)
	GetByID(id int) (*model.User, bool)
	GetByUsername(username string) (*model.User, bool)
}

type userRepoDoc struct {
	doc *model.Document
}

var _ UserRepo = (*userRepoDoc)(nil)

func NewUserRepo(doc *model.Document) *userRepoDoc {
	return &userRepoDoc{
		doc: doc,
	}
}

func (r *userRepoDoc) Create(user *model.User) {
	user.ID = r.doc.NextID(model.CollectionUsers)
	r.doc.Users = append(r.doc.Users, *user)
}

func (r *userRepoDoc) GetByID(id int) (*model.User, bool) {
	for i := range r.doc.Users {
		if r.doc.Users[i].ID == id {
			u := r.doc.Users[i]
			return &u, true
		}
	}
	return nil, false
}

// GetByUsername expects a lowercase username, stored names are lowercase.
func (r *userRepoDoc) GetByUsername(username string) (*model.User, bool) {
	for i := range r.doc.Users {
		if r.doc.Users[i].Username == username {
			u := r.doc.Users[i]
			return &u, true
		}
	}
	return nil, false
}

type TokenRepo interface {
	Create(token model.AuthToken)
	Get(token string) (*model.AuthToken, bool)
	Delete(token string) bool
}

type tokenRepoDoc struct {
	doc *model.Document
}

var _ TokenRepo = (*tokenRepoDoc)(nil)

func NewTokenRepo(doc *model.Document) *tokenRepoDoc {
	return &tokenRepoDoc{
		doc: doc,
	}
}

func (r *tokenRepoDoc) Create(token model.AuthToken) {
	r.doc.AuthTokens = append(r.doc.AuthTokens, token)
}

func (r *tokenRepoDoc) Get(token string) (*model.AuthToken, bool) {
	for i := range r.doc.AuthTokens {
		if r.doc.AuthTokens[i].Token == token {
			t := r.doc.AuthTokens[i]
			return &t, true
		}
	}
	return nil, false
}

func (r *tokenRepoDoc) Delete(token string) bool {
	n := len(r.doc.AuthTokens)
	r.doc.AuthTokens = slices.DeleteFunc(r.doc.AuthTokens, func(t model.AuthToken) bool {
		return t.Token == token
	})
	return len(r.doc.AuthTokens) != n
}
