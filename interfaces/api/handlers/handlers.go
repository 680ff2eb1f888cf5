package handlers

import (
	"task-api/domain/services"
	"task-api/infrastructure/websocket"
	"task-api/pkg/config"
	"task-api/pkg/scheduler"
)

// Services contains all the services needed for handlers
type Services struct {
	UserService  services.UserService
	TaskService  services.TaskService
	Hub          *websocket.Hub
	GoogleConfig config.GoogleOAuthConfig
	Scheduler    scheduler.JobScheduler
}

// Handlers contains all HTTP handlers
type Handlers struct {
	TaskHandler      *TaskHandler
	AuthHandler      *AuthHandler
	WebSocketHandler *WebSocketHandler
	HealthHandler    *HealthHandler

	// Resolver backs the identity middleware.
	Resolver services.IdentityResolver
}

func NewHandlers(services *Services) *Handlers {
	return &Handlers{
		TaskHandler:      NewTaskHandler(services.TaskService),
		AuthHandler:      NewAuthHandler(services.UserService, services.GoogleConfig),
		WebSocketHandler: NewWebSocketHandler(services.Hub),
		HealthHandler:    NewHealthHandler(services.Scheduler),
		Resolver:         services.UserService,
	}
}
