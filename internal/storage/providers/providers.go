package providers

import "github.com/jackc/pgx/v5/pgxpool"

type Providers struct {
	AuthProvider       *AuthProvider
	AssignmentProvider *AssignmentProvider
	TemplateProvider   *TemplateProvider
	MetricsProvider    *MetricsProvider
}

func New(db *pgxpool.Pool) *Providers {
	return &Providers{
		AuthProvider:       NewAuthProvider(db),
		AssignmentProvider: NewAssignmentProvider(db),
		TemplateProvider:   NewTemplateProvider(db),
		MetricsProvider:    NewMetricsProvider(db),
	}
}
