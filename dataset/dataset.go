// Package dataset 读取分号分隔的 CSV 输入文件，转换成引擎的输入表。
package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/cuisinekit/affinity"
	"github.com/rushteam/cuisinekit/config"
	"github.com/rushteam/cuisinekit/core"
)

// 各文件要求的最少列数
const (
	minUserColumns    = 2 // userID;name;...
	minPlaceColumns   = 1 // placeID;name;...
	minCuisineColumns = 2 // placeID;cuisine
	minRatingColumns  = 5 // userID;placeID;rating;food_rating;service_rating
)

// Dataset 是一次加载的全部输入。
type Dataset struct {
	Users    []core.UserProfile
	Places   []core.Place
	Ratings  []core.RatingRecord
	Cuisines []core.CuisineAssignment
}

// Input 返回引擎需要的三张表。
func (d *Dataset) Input() affinity.Input {
	return affinity.Input{
		Users:    d.Users,
		Ratings:  d.Ratings,
		Cuisines: d.Cuisines,
	}
}

// Load 并行读取四个文件，任一文件失败则整体失败。
func Load(ctx context.Context, cfg config.DataConfig) (*Dataset, error) {
	ds := &Dataset{}
	comma := cfg.Comma()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := readFile(ctx, cfg.Path(cfg.Users), comma, minUserColumns)
		if err != nil {
			return err
		}
		ds.Users = make([]core.UserProfile, 0, len(rows))
		for _, r := range rows {
			ds.Users = append(ds.Users, core.UserProfile{UserID: r[0], DisplayName: r[1], Extra: r[2:]})
		}
		return nil
	})
	g.Go(func() error {
		rows, err := readFile(ctx, cfg.Path(cfg.Places), comma, minPlaceColumns)
		if err != nil {
			return err
		}
		ds.Places = make([]core.Place, 0, len(rows))
		for _, r := range rows {
			p := core.Place{PlaceID: r[0]}
			if len(r) > 1 {
				p.Name = r[1]
				p.Extra = r[2:]
			}
			ds.Places = append(ds.Places, p)
		}
		return nil
	})
	g.Go(func() error {
		rows, err := readFile(ctx, cfg.Path(cfg.Cuisines), comma, minCuisineColumns)
		if err != nil {
			return err
		}
		ds.Cuisines = make([]core.CuisineAssignment, 0, len(rows))
		for _, r := range rows {
			ds.Cuisines = append(ds.Cuisines, core.CuisineAssignment{PlaceID: r[0], Cuisine: r[1]})
		}
		return nil
	})
	g.Go(func() error {
		rows, err := readFile(ctx, cfg.Path(cfg.Ratings), comma, minRatingColumns)
		if err != nil {
			return err
		}
		ds.Ratings = make([]core.RatingRecord, 0, len(rows))
		for _, r := range rows {
			ds.Ratings = append(ds.Ratings, core.RatingRecord{
				UserID:  r[0],
				PlaceID: r[1],
				General: r[2],
				Food:    r[3],
				Service: r[4],
			})
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ds, nil
}

func readFile(ctx context.Context, path string, comma rune, minColumns int) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(ctx, f, path, comma, minColumns)
}

// Read 读取 CSV 内容，跳过表头。name 只用于错误信息。
// 列数少于 minColumns 的行返回 core.ErrMalformedRow，带文件名和行号。
func Read(ctx context.Context, r io.Reader, name string, comma rune, minColumns int) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: read header: %w", name, err)
	}

	var rows [][]string
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if isBlank(rec) {
			continue
		}
		if len(rec) < minColumns {
			line, _ := cr.FieldPos(0)
			return nil, core.ErrMalformedRow.Wrapf(nil, "%s:%d: want at least %d columns, got %d", name, line, minColumns, len(rec))
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
