package database

import (
	"eduassess_backend/internal/config"
	"eduassess_backend/internal/model"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

const (
	DefaultInstructorUsername = "instructor"
	DefaultInstructorPassword = "password123"
)

func dialector(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "mysql", "":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
			cfg.User,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.DBName,
			cfg.Charset,
			cfg.ParseTime,
		)
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=Asia/Seoul",
			cfg.Host,
			cfg.Port,
			cfg.User,
			cfg.Password,
			cfg.DBName,
			cfg.SSLMode,
		)
		return postgres.Open(dsn), nil
	case "sqlite":
		// 使用纯 Go 的 modernc 驱动
		return sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: cfg.Path}), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

func InitDB(cfg *config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	d, err := dialector(cfg)
	if err != nil {
		return nil, err
	}

	level := logger.Warn
	if debug {
		level = logger.Info
	}

	db, err := gorm.Open(d, &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, err
	}

	if cfg.Driver == "sqlite" {
		// sqlite 只允许单写
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	log.Printf("Database connection established (%s)", cfg.Driver)
	return db, nil
}

// Migrate 自动迁移所有表
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.Subject{},
		&model.Question{},
		&model.Assessment{},
		&model.Submission{},
		&model.Grade{},
		&model.UserBadge{},
		&model.UserAchievement{},
		&model.PointLog{},
	)
	if err != nil {
		return err
	}
	log.Println("Database migration completed")
	return nil
}

// Seed 默认教师账号不存在时，创建教师账号和 100 个科目
func Seed(db *gorm.DB) error {
	var existing model.User
	err := db.Where("username = ?", DefaultInstructorUsername).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultInstructorPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		instructor := &model.User{
			Username:       DefaultInstructorUsername,
			Name:           "강사",
			Password:       string(hashed),
			Role:           model.Instructor,
			LastActiveDate: time.Now().Format("2006-01-02"),
		}
		if err := tx.Create(instructor).Error; err != nil {
			return err
		}

		subjects := make([]model.Subject, 0, len(defaultSubjects))
		for i, name := range defaultSubjects {
			subjects = append(subjects, model.Subject{
				Name:        name,
				Code:        fmt.Sprintf("SUB%03d", i+1),
				Description: name + " 과목입니다.",
				IsActive:    true,
				CreatedBy:   instructor.ID,
			})
		}
		if err := tx.CreateInBatches(subjects, 50).Error; err != nil {
			return err
		}

		log.Printf("Seeded default instructor and %d subjects", len(subjects))
		return nil
	})
}

var defaultSubjects = []string{
	// 인문학
	"국어국문학", "영어영문학", "중어중문학", "일어일문학", "불어불문학", "독어독문학", "러시아학", "사학", "철학", "종교학",
	// 사회과학
	"정치외교학", "경제학", "사회학", "심리학", "인류학", "지리학", "사회복지학", "행정학", "신문방송학", "광고홍보학",
	// 자연과학
	"수학", "물리학", "화학", "생물학", "지구과학", "천문학", "통계학", "환경과학", "생명과학", "해양학",
	// 공학
	"기계공학", "전기전자공학", "컴퓨터공학", "화학공학", "건설환경공학", "산업공학", "재료공학", "원자력공학", "항공우주공학", "생명공학",
	// 의학 및 보건
	"의학", "치의학", "한의학", "수의학", "약학", "간호학", "물리치료학", "작업치료학", "방사선학", "임상병리학",
	// 농업 및 생명
	"농학", "원예학", "축산학", "산림학", "수산학", "식품공학", "농업경제학", "농업교육학", "바이오시스템공학", "농업생명과학",
	// 예술 및 체육
	"음악학", "미술학", "연극영화학", "무용학", "디자인학", "체육학", "태권도학", "스포츠의학", "레저스포츠학", "골프학",
	// 교육학
	"교육학", "유아교육학", "초등교육학", "특수교육학", "교육심리학", "교육과정학", "교육행정학", "평생교육학", "교육공학", "상담학",
	// 경영 및 상경
	"경영학", "회계학", "마케팅학", "재무학", "인사조직학", "생산관리학", "국제경영학", "벤처경영학", "호텔경영학", "관광경영학",
	// 법학 및 공공정책
	"법학", "국제법학", "공법학", "사법학", "행정법학", "국제관계학", "외교학", "정치학", "공공정책학", "도시계획학",
}
