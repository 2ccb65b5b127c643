package server

import (
	"github.com/danielgtaylor/huma/v2"

	v1 "github.com/visitlens/visitlens/internal/api/v1"
	"github.com/visitlens/visitlens/internal/session"
)

func registerAPIRoutes(api huma.API, sessions *session.Service) {
	v1.RegisterDialogueRoutes(api, sessions)
}
