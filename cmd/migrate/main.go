package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/coachdesk/teamtrainer/internal/models"
	"github.com/coachdesk/teamtrainer/pkg/config"
	"github.com/coachdesk/teamtrainer/pkg/database"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: migrate [up|down|seed]")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment(), database.PoolSettings{
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	command := os.Args[1]

	switch command {
	case "up":
		if err := runMigrations(db); err != nil {
			logrus.Fatalf("Failed to run migrations: %v", err)
		}
		logrus.Info("Migrations completed successfully")

	case "down":
		if err := dropTables(db); err != nil {
			logrus.Fatalf("Failed to drop tables: %v", err)
		}
		logrus.Info("Tables dropped successfully")

	case "seed":
		if err := seedData(db); err != nil {
			logrus.Fatalf("Failed to seed data: %v", err)
		}
		logrus.Info("Data seeded successfully")

	default:
		log.Fatalf("Unknown command: %s", command)
	}
}

func runMigrations(db *database.DB) error {
	if err := db.AutoMigrate(
		&models.Athlete{},
		&models.TrainingSession{},
		&models.Attendance{},
		&models.DrillCatalog{},
		&models.TrainingDrill{},
		&models.DrillScore{},
	); err != nil {
		return fmt.Errorf("failed to migrate models: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_attendances_training ON attendances(training_id)",
		"CREATE INDEX IF NOT EXISTS idx_training_drills_training ON training_drills(training_id)",
		"CREATE INDEX IF NOT EXISTS idx_drill_scores_drill ON drill_scores(training_drill_id)",
		"CREATE INDEX IF NOT EXISTS idx_drill_scores_athlete ON drill_scores(athlete_id)",
	}
	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

func dropTables(db *database.DB) error {
	// Reverse dependency order
	tables := []string{
		"drill_scores",
		"training_drills",
		"drill_catalog",
		"attendances",
		"training_sessions",
		"athletes",
	}

	for _, table := range tables {
		if err := db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)).Error; err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}

	return nil
}

func intPtr(v int) *int { return &v }

func seedData(db *database.DB) error {
	athletes := []models.Athlete{
		{Name: "Bruno Carvalho", JerseyNumber: intPtr(7), CurrentPosition: models.PositionQuarterback, IsActive: true},
		{Name: "Diego Ferreira", JerseyNumber: intPtr(12), CurrentPosition: models.PositionWideReceiver, IsActive: true},
		{Name: "Rafael Moreira", JerseyNumber: intPtr(22), CurrentPosition: models.PositionWideReceiver, IsActive: true},
		{Name: "Lucas Tanaka", JerseyNumber: intPtr(34), CurrentPosition: models.PositionRunningBack, IsActive: true},
		{Name: "Felipe Duarte", JerseyNumber: intPtr(55), CurrentPosition: models.PositionCenter, IsActive: true},
		{Name: "Gabriel Nunes", JerseyNumber: intPtr(21), CurrentPosition: models.PositionDefensiveBack, IsActive: true},
		{Name: "Thiago Ribeiro", JerseyNumber: intPtr(42), CurrentPosition: models.PositionSafety, IsActive: true},
		{Name: "Marcos Siqueira", JerseyNumber: intPtr(28), CurrentPosition: models.PositionCornerback, IsActive: true},
		{Name: "Vinicius Prado", JerseyNumber: intPtr(90), CurrentPosition: models.PositionRusher, IsActive: true},
		{Name: "Eduardo Lima", JerseyNumber: intPtr(15), IsActive: true},
	}
	if err := db.Create(&athletes).Error; err != nil {
		return fmt.Errorf("failed to create athletes: %w", err)
	}

	catalog := []models.DrillCatalog{
		{Name: "Route Running", Category: "offense", Description: "Crispness and depth on the route tree"},
		{Name: "Catching", Category: "offense", Description: "Hands drill, contested and over the shoulder"},
		{Name: "Tackling Form", Category: "defense", Description: "Wrap-up technique against the bag"},
		{Name: "40-Yard Sprint", Category: "conditioning", Description: "Timed sprint, flying start"},
		{Name: "Agility Ladder", Category: "conditioning", Description: "Footwork through the ladder"},
		{Name: "Snap Accuracy", Category: "offense", Description: "Shotgun snap placement"},
	}
	if err := db.Create(&catalog).Error; err != nil {
		return fmt.Errorf("failed to create drill catalog: %w", err)
	}

	// Three recent sessions so the trend endpoints have a series
	dates := []time.Time{
		time.Now().AddDate(0, 0, -14),
		time.Now().AddDate(0, 0, -7),
		time.Now().AddDate(0, 0, -2),
	}

	for si, date := range dates {
		session := models.TrainingSession{
			Date:      date,
			StartTime: "19:30",
			Location:  "Campo Municipal",
			Notes:     "Regular team practice",
		}
		if err := db.Create(&session).Error; err != nil {
			return fmt.Errorf("failed to create training session: %w", err)
		}

		attendance := make([]models.Attendance, 0, len(athletes))
		for ai, athlete := range athletes {
			status := models.AttendancePresent
			switch {
			case ai == 9:
				status = models.AttendanceJustified
			case ai == 7 && si == 1:
				status = models.AttendanceAbsent
			case ai == 3 && si == 2:
				status = models.AttendanceLate
			}
			attendance = append(attendance, models.Attendance{
				TrainingID: session.ID,
				AthleteID:  athlete.ID,
				Status:     status,
			})
		}
		if err := db.Create(&attendance).Error; err != nil {
			return fmt.Errorf("failed to create attendance: %w", err)
		}

		drills := []models.TrainingDrill{
			{TrainingID: session.ID, DrillID: &catalog[0].ID, Order: 1, Weight: 2.0},
			{TrainingID: session.ID, DrillID: &catalog[2].ID, Order: 2, Weight: 1.5},
			{TrainingID: session.ID, DrillID: &catalog[3].ID, Order: 3, Weight: 1.0},
			{TrainingID: session.ID, NameOverride: "Scrimmage", Order: 4, Weight: 1.0, MaxScore: 10},
		}
		if err := db.Create(&drills).Error; err != nil {
			return fmt.Errorf("failed to create training drills: %w", err)
		}

		scores := make([]models.DrillScore, 0, len(attendance)*len(drills))
		for ai, att := range attendance {
			if !models.IsRankable(att.Status) {
				continue
			}
			for di, drill := range drills {
				// Deterministic spread across the 0-10 band, drifting
				// up in later sessions
				base := 4.0 + float64((ai*3+di*2)%5) + 0.5*float64(si)
				if base > 10 {
					base = 10
				}
				scores = append(scores, models.DrillScore{
					TrainingDrillID: drill.ID,
					AthleteID:       att.AthleteID,
					Score:           base,
				})
			}
		}
		if err := db.Create(&scores).Error; err != nil {
			return fmt.Errorf("failed to create drill scores: %w", err)
		}

		logrus.Infof("Seeded training %s with %d athletes and %d scores", session.DateLabel(), len(attendance), len(scores))
	}

	return nil
}
