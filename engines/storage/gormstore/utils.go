package gormstore

import (
	"context"
	"fmt"
	"time"

	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/helpers"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/resources"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type gormDBQuerier[E any] struct {
	*gorm.DB
	tableName        string
	primaryKeyColumn string
}

func TableQuery[E any](db *gorm.DB, tableName string, primaryKeyColumn string, model E) (*gormDBQuerier[E], error) {
	return &gormDBQuerier[E]{
		DB:               db,
		tableName:        tableName,
		primaryKeyColumn: primaryKeyColumn,
	}, nil
}

type gormWhereParams struct {
	query     interface{}
	extraArgs []interface{}
}

func applyWhere(tx *gorm.DB, where []gormWhereParams) *gorm.DB {
	for _, w := range where {
		tx = tx.Where(w.query, w.extraArgs...)
	}
	return tx
}

// SelectExists returns the first element matching every where clause.
func (db *gormDBQuerier[E]) SelectExists(ctx context.Context, where []gormWhereParams) (bool, *E, error) {
	var elem E
	tx := applyWhere(db.Table(db.tableName).WithContext(ctx), where).Limit(1).Find(&elem)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	if tx.RowsAffected == 0 {
		return false, nil, nil
	}

	return true, &elem, nil
}

func (db *gormDBQuerier[E]) Count(ctx context.Context, where []gormWhereParams) (int64, error) {
	var count int64
	tx := applyWhere(db.Table(db.tableName).WithContext(ctx), where).Count(&count)
	if tx.Error != nil {
		return -1, tx.Error
	}

	return count, nil
}

// SelectWindow lists elements ordered by timeColumn, bounded by limit.
func (db *gormDBQuerier[E]) SelectWindow(ctx context.Context, where []gormWhereParams, timeColumn string, sort resources.SortMode, limit int) ([]E, error) {
	elems := []E{}

	if sort == "" {
		sort = resources.SortModeDesc
	}
	if limit <= 0 {
		limit = resources.DefaultRealtimeLimit
	}

	tx := applyWhere(db.Table(db.tableName).WithContext(ctx), where).
		Order(fmt.Sprintf("%s %s", timeColumn, sort)).
		Limit(limit).
		Find(&elems)
	if tx.Error != nil {
		return nil, tx.Error
	}

	return elems, nil
}

func (db *gormDBQuerier[E]) Insert(ctx context.Context, elem *E) (*E, error) {
	tx := db.Table(db.tableName).WithContext(ctx).Create(elem)
	if err := tx.Error; err != nil {
		return nil, err
	}

	return elem, nil
}

// InsertBulk writes every element in a single statement.
func (db *gormDBQuerier[E]) InsertBulk(ctx context.Context, elems []E) error {
	if len(elems) == 0 {
		return nil
	}

	return db.Table(db.tableName).WithContext(ctx).Create(&elems).Error
}

func (db *gormDBQuerier[E]) Update(ctx context.Context, elem *E, elemID string) (*E, error) {
	tx := db.Table(db.tableName).WithContext(ctx).Where(fmt.Sprintf("%s = ?", db.primaryKeyColumn), elemID).Save(elem)
	if err := tx.Error; err != nil {
		return nil, err
	}

	if tx.RowsAffected != 1 {
		return nil, gorm.ErrRecordNotFound
	}

	return elem, nil
}

func NewGormLogger(logger *logrus.Entry) *GormLogger {
	return &GormLogger{
		logger: logger,
	}
}

// GormLogger routes gorm output through logrus.
type GormLogger struct {
	logger *logrus.Entry
}

func (l *GormLogger) LogMode(lvl gormlogger.LogLevel) gormlogger.Interface {
	newlogger := *l
	return &newlogger
}

func (l *GormLogger) Info(ctx context.Context, str string, rest ...interface{}) {
	le := helpers.ConfigureLogger(ctx, l.logger)
	le.Infof(str, rest...)
}

func (l *GormLogger) Warn(ctx context.Context, str string, rest ...interface{}) {
	le := helpers.ConfigureLogger(ctx, l.logger)
	le.Warnf(str, rest...)
}

func (l *GormLogger) Error(ctx context.Context, str string, rest ...interface{}) {
	le := helpers.ConfigureLogger(ctx, l.logger)
	le.Errorf(str, rest...)
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	le := helpers.ConfigureLogger(ctx, l.logger)
	sql, rows := fc()
	if err != nil {
		le.Errorf("Took: %s, Err:%s, SQL: %s, AffectedRows: %d", time.Since(begin).String(), err, sql, rows)
	} else {
		le.Tracef("Took: %s, SQL: %s, AffectedRows: %d", time.Since(begin).String(), sql, rows)
	}
}
