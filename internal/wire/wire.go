package wire

import (
	"Linkup/internal/api"
	"Linkup/internal/api/handler"
	imMongo "Linkup/internal/pkg/mongo"
	"Linkup/internal/repository"
	"Linkup/internal/service"
	"Linkup/internal/ws"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router *gin.Engine
	DB     *gorm.DB
	Hub    *ws.Hub
}

func BuildApplication(db *gorm.DB, mongoDB *mongo.Database) (*ApplicationContainer, error) {
	convRepo := repository.NewConversationRepo(db)
	groupRepo := repository.NewGroupRepo(db)
	unreadRepo := repository.NewUnreadRepo(db)
	presenceRepo := repository.NewPresenceRepo(db)
	messageRepo := imMongo.NewMessageRepo(mongoDB)
	groupMsgRepo := imMongo.NewGroupMessageRepo(mongoDB)

	hub := ws.NewHub()

	unreadService := service.NewUnreadService(groupRepo, unreadRepo, hub)
	presenceService := service.NewPresenceService(presenceRepo, hub)
	directService := service.NewDirectService(convRepo, messageRepo, unreadService, hub)
	groupService := service.NewGroupService(groupRepo, groupMsgRepo, unreadService, hub)

	handlers := &api.HandlersGroup{
		WSHandler: handler.NewWsHandler(hub, presenceService, directService, groupService),
		IMHandler: handler.NewIMHandler(unreadService, directService, groupService, presenceService),
	}

	router := api.SetupRouter(handlers)

	return &ApplicationContainer{
		Router: router,
		DB:     db,
		Hub:    hub,
	}, nil
}
