// Package menu 是交互式命令行菜单：选择度量、模型、数量上限，
// 然后查看菜系相似度矩阵、相似用户和推荐结果。
package menu

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rushteam/cuisinekit/affinity"
	"github.com/rushteam/cuisinekit/core"
	"github.com/rushteam/cuisinekit/filter"
	"github.com/rushteam/cuisinekit/pipeline"
	"github.com/rushteam/cuisinekit/recall"
	"github.com/rushteam/cuisinekit/rerank"
	"github.com/rushteam/cuisinekit/similarity"
)

const (
	msgGate         = "Ensure you have selected the similarity metric (1), recommendation model (3), and set the maximum recommendations (4)."
	msgNoMetric     = "Please select a similarity metric first (menu item 1)."
	msgUserNotFound = "User not found."
	msgBadLimit     = "Invalid input. Please enter a positive integer."
	msgBadMetric    = "Invalid choice. Please select either 'Euclidean' or 'Pearson'."
	msgBadModel     = "Invalid choice. Please select either 'User-based' or 'Item-based'."
	msgBadChoice    = "Invalid choice. Please enter a number between 1 and 8."
	msgExit         = "Exiting the program."
)

const banner = `
--- Cuisine Recommendation System Menu ---
1. Select a similarity metric (Euclidean/Pearson)
2. Display cuisine similarity matrix
3. Select a recommendation model (User-based/Item-based)
4. Set the maximum number of recommendations to be made
5. List similar persons to a given person
6. Make a recommendation to a specific user
7. Set a result filter expression
8. Exit the program`

// Session 是一次菜单会话。状态只在会话内有效。
type Session struct {
	In  io.Reader
	Out io.Writer

	Engine *affinity.Engine

	// Matrices 提供菜系相似度矩阵，通常是带缓存的 similarity.MatrixCache
	Matrices similarity.Source

	// Extras 是追加在召回之后的后处理 Node（来自 pipeline 配置文件），可为空
	Extras *pipeline.Pipeline

	// Filters 是常驻过滤器（黑名单等），在表达式过滤之前执行
	Filters []filter.Filter

	// Expr 是初始的 CEL 过滤表达式，可在菜单 7 中修改
	Expr string

	Logger zerolog.Logger

	metric *similarity.Metric
	model  recall.Model
	limit  int
	expr   *filter.ExprFilter

	input   *lineReader
	stopped bool
	stopErr error
}

// lineReader 在独立 goroutine 中逐行读取输入，读取阻塞时会话仍能响应 ctx 取消。
type lineReader struct {
	lines chan string
	err   error // lines 关闭后可读
}

func startLineReader(r io.Reader, done <-chan struct{}) *lineReader {
	lr := &lineReader{lines: make(chan string)}
	go func() {
		defer close(lr.lines)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case lr.lines <- sc.Text():
			case <-done:
				return
			}
		}
		lr.err = sc.Err()
	}()
	return lr
}

// Run 循环处理菜单输入，直到选择退出、输入结束或 ctx 被取消。
// ctx 取消时立即返回 ctx.Err()，不等待当前行输入完成。
func (s *Session) Run(ctx context.Context) error {
	if s.Matrices == nil {
		s.Matrices = &similarity.Builder{Logger: s.Logger}
	}
	if s.Expr != "" {
		f, err := filter.NewExprFilter(s.Expr, false)
		if err != nil {
			return err
		}
		s.expr = f
	}

	done := make(chan struct{})
	defer close(done)
	s.input = startLineReader(s.In, done)
	s.stopped, s.stopErr = false, nil

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.println(banner)
		choice, ok := s.prompt(ctx, "Enter your choice (1-8): ")
		if !ok {
			return s.stopErr
		}

		switch strings.TrimSpace(choice) {
		case "1":
			s.selectMetric(ctx)
		case "2":
			s.showMatrix(ctx)
		case "3":
			s.selectModel(ctx)
		case "4":
			s.setLimit(ctx)
		case "5":
			s.similarUsers(ctx)
		case "6":
			s.recommend(ctx)
		case "7":
			s.setFilter(ctx)
		case "8":
			s.println(msgExit)
			return nil
		default:
			s.println(msgBadChoice)
		}
		if s.stopped {
			return s.stopErr
		}
	}
}

func (s *Session) selectMetric(ctx context.Context) {
	in, ok := s.prompt(ctx, "Select a similarity metric (Euclidean/Pearson): ")
	if !ok {
		return
	}
	name := strings.ToLower(strings.TrimSpace(in))
	if name != similarity.EuclideanMetric.Name && name != similarity.PearsonMetric.Name {
		s.println(msgBadMetric)
		return
	}
	m, _ := similarity.ByName(name)
	s.metric = &m
	s.printf("Similarity metric set to %s.\n", title(name))
}

func (s *Session) showMatrix(ctx context.Context) {
	if s.metric == nil {
		s.println(msgNoMetric)
		return
	}
	m, err := s.Matrices.Matrix(ctx, s.Engine.CuisineView(), *s.metric)
	if err != nil {
		s.fail(err)
		return
	}
	m.Each(func(a, b string, sim float64) {
		s.printf("%s - %s: %s\n", a, b, formatScore(sim))
	})
}

func (s *Session) selectModel(ctx context.Context) {
	in, ok := s.prompt(ctx, "Select a recommendation model (User-based/Item-based): ")
	if !ok {
		return
	}
	model, err := recall.ParseModel(in)
	if err != nil {
		s.println(msgBadModel)
		return
	}
	s.model = model
	s.printf("Recommendation model set to %s.\n", s.model.Title())
}

func (s *Session) setLimit(ctx context.Context) {
	in, ok := s.prompt(ctx, "Enter the maximum number of recommendations: ")
	if !ok {
		return
	}
	n, err := strconv.Atoi(strings.TrimSpace(in))
	if err != nil || n <= 0 {
		s.println(msgBadLimit)
		return
	}
	s.limit = n
	s.printf("Maximum number of recommendations set to %d.\n", n)
}

func (s *Session) setFilter(ctx context.Context) {
	in, ok := s.prompt(ctx, "Enter a filter expression (empty to clear): ")
	if !ok {
		return
	}
	expr := strings.TrimSpace(in)
	if expr == "" {
		s.expr = nil
		s.println("Result filter cleared.")
		return
	}
	f, err := filter.NewExprFilter(expr, false)
	if err != nil {
		s.printf("Invalid filter expression: %v\n", err)
		return
	}
	s.expr = f
	s.printf("Result filter set to: %s\n", expr)
}

func (s *Session) ready() bool {
	return s.metric != nil && s.model != "" && s.limit > 0
}

func (s *Session) similarUsers(ctx context.Context) {
	if !s.ready() {
		s.println(msgGate)
		return
	}
	name, ok := s.prompt(ctx, "Enter the name of the person: ")
	if !ok {
		return
	}
	if !s.Engine.Table().Has(name) {
		s.println(msgUserNotFound)
		return
	}
	out, err := s.query(ctx, name, &recall.Neighbors{View: s.Engine.Table()})
	if err != nil {
		s.fail(err)
		return
	}
	s.println("Similar users:")
	s.printEntries(out)
}

func (s *Session) recommend(ctx context.Context) {
	if !s.ready() {
		s.println(msgGate)
		return
	}
	name, ok := s.prompt(ctx, "Enter the name of the person for recommendations: ")
	if !ok {
		return
	}
	if !s.Engine.Table().Has(name) {
		s.println(msgUserNotFound)
		return
	}
	node, err := recall.NewRecommendNode(s.model, s.Engine.Table(), s.Engine.CuisineView(), s.Matrices)
	if err != nil {
		s.fail(err)
		return
	}
	out, err := s.query(ctx, name, node)
	if err != nil {
		s.fail(err)
		return
	}
	s.println("Recommendations:")
	s.printEntries(out)
}

// query 组装 召回 -> 常驻过滤 -> 表达式过滤 -> 配置文件 Node -> TopN 并执行。
func (s *Session) query(ctx context.Context, target string, recallNode pipeline.Node) ([]*core.Entry, error) {
	p := &pipeline.Pipeline{Nodes: []pipeline.Node{recallNode}, Logger: s.Logger}

	filters := make([]filter.Filter, 0, len(s.Filters)+1)
	filters = append(filters, s.Filters...)
	if s.expr != nil {
		filters = append(filters, s.expr)
	}
	if len(filters) > 0 {
		p = p.With(&filter.FilterNode{Filters: filters, Logger: s.Logger})
	}
	if s.Extras != nil {
		p = p.With(s.Extras.Nodes...)
	}
	p = p.With(&rerank.TopNNode{})

	q := &core.Query{
		Target: target,
		Metric: s.metric.Name,
		Model:  string(s.model),
		Limit:  s.limit,
	}
	return p.Run(ctx, q, nil)
}

func (s *Session) fail(err error) {
	if core.IsNotFound(err) {
		s.println(msgUserNotFound)
		return
	}
	s.Logger.Error().Err(err).Msg("menu operation failed")
	s.printf("Error: %v\n", err)
}

func (s *Session) printEntries(entries []*core.Entry) {
	for _, e := range entries {
		s.printf("%s: %s\n", e.Key, formatScore(e.Score))
	}
}

// prompt 输出提示并读取一行；输入结束或 ctx 取消时 ok 为 false，原因记在 stopErr。
func (s *Session) prompt(ctx context.Context, msg string) (string, bool) {
	_, _ = io.WriteString(s.Out, msg)
	select {
	case line, ok := <-s.input.lines:
		if !ok {
			s.stopped, s.stopErr = true, s.input.err
			return "", false
		}
		return line, true
	case <-ctx.Done():
		s.stopped, s.stopErr = true, ctx.Err()
		return "", false
	}
}

func (s *Session) println(msg string) {
	_, _ = fmt.Fprintln(s.Out, msg)
}

func (s *Session) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.Out, format, args...)
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
