package db

import (
	"fmt"
	"log"

	"github.com/techagentng/thermotrack/config"
	"github.com/techagentng/thermotrack/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type GormDB struct {
	DB *gorm.DB
}

func GetDB(c *config.Config) *GormDB {
	gormDB := &GormDB{}
	gormDB.Init(c)
	return gormDB
}

func (g *GormDB) Init(c *config.Config) {
	g.DB = getPostgresDB(c)

	if err := Migrate(g.DB); err != nil {
		log.Fatalf("unable to run migrations: %v", err)
	}
}

func getPostgresDB(c *config.Config) *gorm.DB {
	log.Printf("Connecting to postgres: %s@%s:%d/%s", c.PostgresUser, c.PostgresHost, c.PostgresPort, c.PostgresDB)
	postgresDSN := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d",
		c.PostgresHost, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresPort)

	gormConfig := &gorm.Config{}
	if c.Env != "prod" {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}
	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		DSN: postgresDSN,
	}), gormConfig)
	if err != nil {
		log.Fatal(err)
	}

	return gormDB
}

// SeedRewardCatalog inserts the redeemable reward catalog. Catalog rows
// carry a zero user id; the Points column is the redemption cost.
func SeedRewardCatalog(db *gorm.DB) error {
	catalog := []models.Reward{
		{
			Name:        "Reusable Thermo Bottle",
			Points:      100,
			Description: "Insulated bottle shipped to your address",
			VerifyInfo:  "Points earned from reporting temperature",
			IsAvailable: true,
		},
		{
			Name:        "Pocket IR Thermometer",
			Points:      250,
			Description: "Handheld infrared thermometer for field readings",
			VerifyInfo:  "Points earned from reporting temperature",
			IsAvailable: true,
		},
		{
			Name:        "Weather Station Kit",
			Points:      500,
			Description: "Home weather station with outdoor sensor",
			VerifyInfo:  "Points earned from verifying reports",
			IsAvailable: true,
		},
	}

	for _, reward := range catalog {
		var existing models.Reward
		err := db.Where("user_id = 0 AND name = ?", reward.Name).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		if err := db.Create(&reward).Error; err != nil {
			return fmt.Errorf("seeding reward %q: %v", reward.Name, err)
		}
	}

	return nil
}

// Migrate runs the auto migrations and seeds the reward catalog.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Blacklist{},
		&models.DeviceToken{},
		&models.Report{},
		&models.Reward{},
		&models.Transaction{},
		&models.VerifiedReport{},
		&models.Notification{},
	)
	if err != nil {
		return fmt.Errorf("migrations error: %v", err)
	}

	if err := SeedRewardCatalog(db); err != nil {
		return fmt.Errorf("seeding reward catalog error: %v", err)
	}

	return nil
}
