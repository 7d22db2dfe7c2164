package knowledge

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/nutrichat/backend/internal/models"
	"github.com/pageza/nutrichat/backend/internal/testhelpers"
)

func TestTableSourceSQLite(t *testing.T) {
	db, _ := testhelpers.SetupSQLite(t, testhelpers.SampleRecords())

	t.Run("loads rows in id order", func(t *testing.T) {
		store, err := Load(context.Background(), &TableSource{DB: db})
		require.NoError(t, err)
		assert.Equal(t, 5, store.Len())
		assert.Equal(t, []string{"Apples", "Bacon", "Pineapple", "Oatmeal"}, store.DistinctFoodNames())

		rec, ok := store.Lookup("Bacon", "Hypertension")
		require.True(t, ok)
		assert.Equal(t, "Avoid", rec.Recommendation)
	})

	t.Run("missing table", func(t *testing.T) {
		_, err := Load(context.Background(), &TableSource{DB: db, Table: "no_such_table"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrSourceNotFound)
		var le *LoadError
		assert.True(t, errors.As(err, &le))
	})

	t.Run("missing column", func(t *testing.T) {
		require.NoError(t, db.Exec("CREATE TABLE partial (id integer primary key, food_name text, condition text)").Error)
		_, err := Load(context.Background(), &TableSource{DB: db, Table: "partial"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMissingColumns)
		assert.Contains(t, err.Error(), "recommendation")
		assert.Contains(t, err.Error(), "explanation")
	})

	t.Run("blank food name", func(t *testing.T) {
		require.NoError(t, db.Exec("CREATE TABLE blanks (id integer primary key, food_name text, condition text, recommendation text, explanation text)").Error)
		require.NoError(t, db.Exec("INSERT INTO blanks (food_name, condition, recommendation, explanation) VALUES ('Apples', 'Hypertension', 'Recommended', 'ok'), (' ', 'Hypertension', 'Avoid', 'blank')").Error)
		_, err := Load(context.Background(), &TableSource{DB: db, Table: "blanks"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMalformedRow)
		assert.Contains(t, err.Error(), "blanks row 2 has no FoodName value")
	})

	t.Run("borrowed connection not closed", func(t *testing.T) {
		src := &TableSource{DB: db}
		require.NoError(t, CloseSource(src))
		sqlDB, err := db.DB()
		require.NoError(t, err)
		assert.NoError(t, sqlDB.Ping())
	})
}

func TestOpenSource(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("file path", func(t *testing.T) {
		src, err := OpenSource("data/foods.csv", SourceOptions{Logger: logger})
		require.NoError(t, err)
		assert.Equal(t, FileSource{Path: "data/foods.csv"}, src)
	})

	t.Run("s3 uri", func(t *testing.T) {
		client := &fakeS3{}
		src, err := OpenSource("s3://kb/foods.csv", SourceOptions{S3: client, Logger: logger})
		require.NoError(t, err)
		assert.Equal(t, S3Source{Client: client, Bucket: "kb", Key: "foods.csv"}, src)
	})

	t.Run("bad s3 uri", func(t *testing.T) {
		_, err := OpenSource("s3://kb", SourceOptions{Logger: logger})
		var le *LoadError
		assert.True(t, errors.As(err, &le))
	})

	t.Run("empty reference", func(t *testing.T) {
		_, err := OpenSource("", SourceOptions{Logger: logger})
		assert.ErrorIs(t, err, ErrSourceNotFound)
	})

	t.Run("sqlite dsn owns connection", func(t *testing.T) {
		_, dsn := testhelpers.SetupSQLite(t, []models.FoodRecord{
			{FoodName: "Salmon", Condition: "Gout", Recommendation: "Limit", Explanation: "high in purines"},
		})

		src, err := OpenSource(dsn, SourceOptions{Logger: logger})
		require.NoError(t, err)
		assert.Equal(t, "sqlite#foods", src.String())

		store, err := Load(context.Background(), src)
		require.NoError(t, err)
		assert.Equal(t, []string{"Gout"}, store.DistinctConditions())
		assert.NoError(t, CloseSource(src))
	})
}

func TestTableSourcePostgres(t *testing.T) {
	_, dsn := testhelpers.SetupPostgres(t, testhelpers.SampleRecords())

	src, err := OpenSource(dsn, SourceOptions{Logger: zerolog.Nop()})
	require.NoError(t, err)
	defer CloseSource(src)

	store, err := Load(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 5, store.Len())
	assert.Equal(t, []string{"Diabetes", "Hypertension"}, store.DistinctConditions())
}
