package inits

import (
	"fmt"
	"github.com/alexedwards/argon2id"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"stix-ui/app/server/models"
)

func DB(conn string) (db *gorm.DB, err error) {
	// Open the connection
	if db, err = gorm.Open(postgres.Open(conn), &gorm.Config{
		TranslateError: true, // surface unique violations as gorm.ErrDuplicatedKey
	}); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err = Prepare(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Prepare migrates the schema and inserts the startup data. It is safe to run on every start.
func Prepare(db *gorm.DB) (err error) {
	if err = mig(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if err = initData(db); err != nil {
		return fmt.Errorf("failed to init data into database: %w", err)
	}

	return nil
}

func mig(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.ThreatActorType{},
		&models.ThreatActorRole{},
		&models.ThreatActorSophistication{},
		&models.AttackResourceLevel{},
		&models.AttackMotivation{},
		&models.IdentityClass{},
		&models.IdentityRole{},
		&models.Identity{},
		&models.ThreatActor{},
		&models.UserAccount{},
		&models.Post{},
	)
}

func initData(db *gorm.DB) (err error) {
	var counter int64

	// Initial user
	if err = db.Model(&models.User{}).Count(&counter).Error; err != nil {
		return fmt.Errorf("failed to get user count: %w", err)
	} else if counter == 0 { // no users at all, add the initial admin
		var password string
		if password, err = argon2id.CreateHash("password", argon2id.DefaultParams); err != nil {
			return fmt.Errorf("failed to generate password: %w", err)
		}

		if err = db.Create(&models.User{
			Email:    "admin@localhost",
			Username: "admin",
			Name:     "STIX Admin",
			IsAdmin:  true,
			Password: password,
		}).Error; err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}
	}

	// Vocabularies
	if err = seedVocabulary[models.ThreatActorType](db, threatActorTypes); err != nil {
		return err
	}
	if err = seedVocabulary[models.ThreatActorRole](db, threatActorRoles); err != nil {
		return err
	}
	if err = seedVocabulary[models.ThreatActorSophistication](db, threatActorSophistications); err != nil {
		return err
	}
	if err = seedVocabulary[models.AttackResourceLevel](db, attackResourceLevels); err != nil {
		return err
	}
	if err = seedVocabulary[models.AttackMotivation](db, attackMotivations); err != nil {
		return err
	}
	if err = seedVocabulary[models.IdentityClass](db, identityClasses); err != nil {
		return err
	}

	// Existing data or everything imported
	return nil
}

func seedVocabulary[T any, PT models.VocabularyModel[T]](db *gorm.DB, entries []models.Vocabulary) error {
	var counter int64
	if err := db.Model(PT(new(T))).Count(&counter).Error; err != nil {
		return fmt.Errorf("failed to count vocabulary %T: %w", *new(T), err)
	} else if counter > 0 {
		return nil
	}

	rows := make([]*T, 0, len(entries))
	for _, entry := range entries {
		row := new(T)
		*PT(row).Base() = entry
		rows = append(rows, row)
	}

	if err := db.Create(rows).Error; err != nil {
		return fmt.Errorf("failed to create vocabulary %T: %w", *new(T), err)
	}

	return nil
}
