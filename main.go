package main

import (
	"classboard/config"
	"classboard/database"
	authRoutes "classboard/routers/authRoutes"
	classroomRoutes "classboard/routers/classroomRoutes"
	lessonRoutes "classboard/routers/lessonRoutes"
	submissionRoutes "classboard/routers/submissionRoutes"
	"classboard/storage"
	"classboard/utils"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()
	storage.Init()

	// Nightly cleanup of files the deletion protocol could not remove
	utils.StartFileSweeper()

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",        // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	// Serve uploaded lesson and submission files
	app.Static("/uploads", "./"+config.AppConfig.UploadDir)

	authRoutes.SetupAuthRoutes(app)
	classroomRoutes.SetupClassroomRoutes(app)
	lessonRoutes.SetupLessonRoutes(app)
	submissionRoutes.SetupSubmissionRoutes(app)

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
