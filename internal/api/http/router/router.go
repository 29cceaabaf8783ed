package router

import (
	"github.com/go-chi/chi/v5"

	"github.com/Salo-Quispe/backend-poli-path/internal/api/http/handler"
	"github.com/Salo-Quispe/backend-poli-path/internal/api/http/middleware"
	"github.com/Salo-Quispe/backend-poli-path/internal/logger"
	"github.com/Salo-Quispe/backend-poli-path/internal/model"
)

// Router wires handlers, the authorization guard and request logging into
// a chi mux. The guard is the single authorization choke point; only the
// explicitly public routes bypass it.
type Router struct {
	authService  handler.AuthService
	userService  handler.UserService
	imageService handler.ProfileImageService
	tokens       model.TokenManager
	users        model.UserStore
	ctxmgr       model.ContextManager
	logger       *logger.Logger
}

// New creates a new Router instance.
func New(
	authService handler.AuthService,
	userService handler.UserService,
	imageService handler.ProfileImageService,
	tokens model.TokenManager,
	users model.UserStore,
	ctxmgr model.ContextManager,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:  authService,
		userService:  userService,
		imageService: imageService,
		tokens:       tokens,
		users:        users,
		ctxmgr:       ctxmgr,
		logger:       logger,
	}
}

// Register builds the route tree.
func (r *Router) Register() *chi.Mux {
	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.tokens, r.users, r.ctxmgr, r.logger)

	authHandler := handler.NewAuth(r.authService, r.ctxmgr, r.logger)
	userHandler := handler.NewUser(r.userService, r.imageService, r.ctxmgr, r.logger)

	mux := chi.NewRouter()
	mux.Use(logging.Handle)

	mux.Route("/auth", func(rt chi.Router) {
		// Public routes.
		rt.Post("/register", authHandler.Register)
		rt.Post("/login", authHandler.Login)
		rt.Get("/confirm-email/{token}", authHandler.ConfirmEmail)
		rt.Get("/confirm-token", authHandler.CheckRecoveryToken)
		rt.Get("/recover-password/{email}", authHandler.RecoverPasswordRequest)
		// Authenticated by the recovery token itself.
		rt.Post("/recover-password", authHandler.RecoverPassword)

		rt.Group(func(pr chi.Router) {
			pr.Use(authenticate.RequireRoles(model.RoleAdmin))
			pr.Post("/admin-register", authHandler.AdminRegister)
		})

		rt.Group(func(pr chi.Router) {
			pr.Use(authenticate.RequireRoles(model.RoleUser, model.RoleAdmin))
			pr.Patch("/change-password", authHandler.ChangePassword)
			pr.Get("/check-auth-status", authHandler.CheckAuthStatus)
		})
	})

	mux.Route("/user", func(rt chi.Router) {
		rt.Get("/profile-image/{name}", userHandler.GetProfileImage)

		rt.Group(func(pr chi.Router) {
			pr.Use(authenticate.RequireRoles(model.RoleAdmin))
			pr.Get("/", userHandler.List)
			pr.Patch("/{id}/roles", userHandler.UpdateRoles)
		})

		rt.Group(func(pr chi.Router) {
			pr.Use(authenticate.RequireRoles(model.RoleUser, model.RoleAdmin))
			pr.Post("/profile-image", userHandler.UploadProfileImage)
		})
	})

	return mux
}
