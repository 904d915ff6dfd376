package main

import (
	"context"
	"log"
	"math/rand"
	"time"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/messaging"
	"github.com/techagentng/thermotrack/config"
	"github.com/techagentng/thermotrack/db"
	"github.com/techagentng/thermotrack/mailingservices"
	"github.com/techagentng/thermotrack/server"
	"github.com/techagentng/thermotrack/services"
	"google.golang.org/api/option"
)

// initFirebase returns a messaging client for push notifications, or nil
// when no credentials file is configured.
func initFirebase(conf *config.Config) *messaging.Client {
	if conf.GoogleApplicationCredentials == "" {
		log.Println("no Firebase credentials configured, push notifications disabled")
		return nil
	}
	opt := option.WithCredentialsFile(conf.GoogleApplicationCredentials)
	app, err := firebase.NewApp(context.Background(), nil, opt)
	if err != nil {
		log.Printf("error initializing Firebase app, push notifications disabled: %v", err)
		return nil
	}
	client, err := app.Messaging(context.Background())
	if err != nil {
		log.Printf("error getting Messaging client, push notifications disabled: %v", err)
		return nil
	}
	log.Println("Firebase Messaging client initialized")
	return client
}

func main() {
	conf, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	messagingClient := initFirebase(conf)

	mailgunClient := &mailingservices.Mailgun{}
	mailgunClient.Init(conf.MgDomain, conf.MailgunApiKey, conf.MgEmailFrom)

	gormDB := db.GetDB(conf)

	authRepo := db.NewAuthRepo(gormDB)
	reportRepo := db.NewReportRepo(gormDB)
	ledgerRepo := db.NewLedgerRepo(gormDB)
	rewardRepo := db.NewRewardRepo(gormDB)
	notificationRepo := db.NewNotificationRepo(gormDB)

	seed := conf.RewardSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	notificationService := services.NewNotificationService(notificationRepo, authRepo, messagingClient, mailgunClient)
	weatherService := services.NewWeatherService(conf)
	visionGateway := services.NewVisionGateway(conf)
	authService := services.NewAuthService(authRepo, conf)
	reportService := services.NewReportService(reportRepo, notificationService)
	verificationService := services.NewVerificationService(reportRepo, visionGateway, weatherService, notificationService, rng)
	ledgerService := services.NewLedgerService(ledgerRepo, rewardRepo, notificationService)
	precheckService := services.NewPrecheckService(weatherService, visionGateway)
	mediaService := services.NewMediaService(conf)

	s := &server.Server{
		Config:                 conf,
		Mail:                   mailgunClient,
		AuthRepository:         authRepo,
		ReportRepository:       reportRepo,
		LedgerRepository:       ledgerRepo,
		RewardRepository:       rewardRepo,
		NotificationRepository: notificationRepo,
		AuthService:            authService,
		ReportService:          reportService,
		VerificationService:    verificationService,
		LedgerService:          ledgerService,
		PrecheckService:        precheckService,
		MediaService:           mediaService,
		NotificationService:    notificationService,
		DB:                     gormDB,
	}
	s.Start()
}
