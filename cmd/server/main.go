package main

import (
	"fmt"
	"log"
	"net/http"

	"gamedex/backend/internal/auth"
	"gamedex/backend/internal/classification"
	"gamedex/backend/internal/config"
	"gamedex/backend/internal/database"
	"gamedex/backend/internal/handler"

	"github.com/gin-gonic/gin"

	// Swagger imports
	_ "gamedex/backend/docs" // This is important for swag to find the generated docs

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func init() {
	config.LoadConfig()
}

// @title           GameDex API
// @version         1.0
// @description     Game catalog with community-voted classifications, search and curated home lists.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	// Connect to the database
	database.Connect(config.AppConfig.DatabaseURL)

	handler.Init(database.DB, classification.Config{
		Alike: classification.Bounds{
			Upper: config.AppConfig.VoteAlikeUpper,
			Lower: config.AppConfig.VoteAlikeLower,
		},
		Tag: classification.Bounds{
			Upper: config.AppConfig.VoteTagUpper,
			Lower: config.AppConfig.VoteTagLower,
		},
		Recommend: classification.Bounds{
			Upper: config.AppConfig.VoteRecommendUpper,
			Lower: config.AppConfig.VoteRecommendLower,
		},
	})

	router := gin.Default()

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// API v1 routes
	apiV1 := router.Group("/api/v1")
	{
		// Auth routes
		authRoutes := apiV1.Group("/auth")
		{
			authRoutes.POST("/register", handler.RegisterUser)
			authRoutes.POST("/login", handler.LoginUser)
		}

		// Public routes; a valid token personalizes the results but is
		// never required.
		public := apiV1.Group("")
		public.Use(auth.OptionalAuthMiddleware())
		{
			public.GET("/home", handler.GetHome)

			public.GET("/games", handler.SearchGames)
			public.GET("/games/select", handler.SelectGames)
			public.GET("/games/:code", handler.GetGame)
			public.GET("/games/:code/alike", handler.GetAlikeGames)
			public.GET("/games/:code/reviews", handler.GetGameReviews)
			public.GET("/games/:code/media", handler.GetGameMedia)

			public.GET("/tags", handler.GetGroupedTags)
			public.GET("/tags/votable", handler.GetVotableTags)
			public.GET("/tags/searchable", handler.GetSearchableTags)
		}

		// User routes (protected)
		userRoutes := apiV1.Group("/users")
		userRoutes.Use(auth.AuthMiddleware())
		{
			userRoutes.GET("/me", handler.GetMe)
			userRoutes.GET("/me/wishlist", handler.GetMyWishlist)
			userRoutes.GET("/me/recommendations", handler.GetMyRecommendations)
		}

		// Voting and per-game actions (protected)
		gameRoutes := apiV1.Group("/games")
		gameRoutes.Use(auth.AuthMiddleware())
		{
			gameRoutes.POST("/:code/recommend", handler.RecommendGame)
			gameRoutes.DELETE("/:code/recommend", handler.RetractRecommendation)

			gameRoutes.POST("/:code/wish", handler.AddToWishlist)
			gameRoutes.DELETE("/:code/wish", handler.RemoveFromWishlist)

			gameRoutes.PUT("/:code/reviews", handler.WriteReview)
			gameRoutes.DELETE("/:code/reviews", handler.DeleteReview)

			gameRoutes.GET("/:code/tags/voted", handler.GetVotedTags)
			gameRoutes.POST("/:code/tags/:id/vote", handler.VoteTag)
			gameRoutes.DELETE("/:code/tags/:id/vote", handler.RetractTagVote)

			gameRoutes.GET("/:code/alike/voted", handler.GetVotedAlike)
			gameRoutes.POST("/:code/alike/:other/vote", handler.VoteAlike)
			gameRoutes.DELETE("/:code/alike/:other/vote", handler.RetractAlikeVote)
		}

		reviewRoutes := apiV1.Group("/reviews")
		reviewRoutes.Use(auth.AuthMiddleware())
		{
			reviewRoutes.POST("/:id/vote", handler.VoteReview)
			reviewRoutes.DELETE("/:id/vote", handler.RetractReviewVote)
		}

		// Admin routes (protected by auth and admin check)
		adminRoutes := apiV1.Group("/admin")
		adminRoutes.Use(auth.AuthMiddleware(), auth.AdminMiddleware())
		{
			adminRoutes.GET("/users", handler.SearchUsers)

			adminGameRoutes := adminRoutes.Group("/games")
			{
				adminGameRoutes.GET("", handler.AdminListGames)
				adminGameRoutes.POST("/:id/hide", handler.HideGame)
				adminGameRoutes.DELETE("/:id/hide", handler.UnhideGame)
				adminGameRoutes.POST("/:id/highlight", handler.ConfirmHighlight)
				adminGameRoutes.DELETE("/:id/highlight", handler.UnconfirmHighlight)
				adminGameRoutes.POST("/:id/merge/:dropID", handler.MergeGames)
				adminGameRoutes.GET("/:id/tags", handler.AdminGameTags)
				adminGameRoutes.POST("/:id/tags/:tagID/confirm", handler.ConfirmTag)
				adminGameRoutes.DELETE("/:id/tags/:tagID/confirm", handler.UnconfirmTag)
				adminGameRoutes.POST("/:id/media", handler.AddGameMedia)
			}

			adminRoutes.DELETE("/media/:id", handler.DeleteGameMedia)

			alikeRoutes := adminRoutes.Group("/alike")
			{
				alikeRoutes.GET("", handler.AdminListAlikePairs)
				alikeRoutes.POST("/:game1ID/:game2ID/confirm", handler.ConfirmAlike)
				alikeRoutes.DELETE("/:game1ID/:game2ID/confirm", handler.UnconfirmAlike)
			}

			tagGroups := adminRoutes.Group("/tag-groups")
			{
				tagGroups.POST("", handler.CreateTagGroup)
				tagGroups.PUT("/:id", handler.UpdateTagGroup)
			}

			tags := adminRoutes.Group("/tags")
			{
				tags.GET("/suggestions", handler.AdminListTagSuggestions)
				tags.POST("", handler.CreateTag)
				tags.PUT("/:id", handler.UpdateTag)
				tags.DELETE("/:id", handler.DeleteTag)
				tags.POST("/:id/merge/:dropID", handler.MergeTags)
			}

			slots := adminRoutes.Group("/slots")
			{
				slots.GET("", handler.GetSlots)
				slots.POST("", handler.CreateSlot)
				slots.POST("/:id/move", handler.MoveSlot)
				slots.DELETE("/:id", handler.DeleteSlot)
			}

			lists := adminRoutes.Group("/lists")
			{
				lists.POST("", handler.CreateGameList)
				lists.PUT("/:id", handler.UpdateGameList)
				lists.DELETE("/:id", handler.DeleteGameList)
			}
		}
	}

	fmt.Println("Server is running on :8080")
	fmt.Println("Swagger UI is available at http://localhost:8080/swagger/index.html")
	log.Fatal(router.Run(":8080"))
}
