package tcp

import (
	"bufio"
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"powsearch/internal/domain"
	"powsearch/internal/usecases"
	"powsearch/pkg/pow/digest"
)

type Server struct {
	cfg            *Config
	powUsecase     usecases.PowUsecase
	receiptUsecase usecases.ReceiptUsecase
	logger         Logger
}

type Config struct {
	Address    string
	KeepAlive  time.Duration
	Deadline   time.Duration
	BufferSize int
	// MaxWidth bounds the nonce line a client may send, in bytes of nonce.
	MaxWidth int
}

const (
	defaultMaxWidth  = 4096
	maxDigestNameLen = 64
)

// Logger is satisfied by *zap.SugaredLogger.
type Logger interface {
	Errorw(msg string, keysAndValues ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Debugw(msg string, keysAndValues ...interface{})
}

func NewServer(cfg *Config, powUsecase usecases.PowUsecase, receiptUsecase usecases.ReceiptUsecase, logger Logger) *Server {
	if cfg.MaxWidth <= 0 {
		cfg.MaxWidth = defaultMaxWidth
	}
	return &Server{
		cfg:            cfg,
		powUsecase:     powUsecase,
		receiptUsecase: receiptUsecase,
		logger:         logger,
	}
}

func (s *Server) Run(ctx context.Context) error {
	lc := net.ListenConfig{
		KeepAlive: s.cfg.KeepAlive,
	}

	listener, err := lc.Listen(ctx, "tcp", s.cfg.Address)
	if err != nil {
		return NewConnectionError("Run", err, "failed to start listener")
	}
	defer listener.Close()

	s.logger.Infow("server started", "address", listener.Addr().String())

	return s.serve(ctx, listener)
}

func (s *Server) serve(ctx context.Context, listener net.Listener) error {
	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				s.logger.Debugw("listener closed")
				return NewConnectionError("serve", ErrServerShutdown, "context cancelled")
			}
			if errors.Is(err, net.ErrClosed) {
				s.logger.Debugw("listener closed")
				return nil
			}
			s.logger.Errorw("accept failed", "error", err)
			continue
		}
		go s.handleConnection(ctx, conn)
	}
}

func (s *Server) handleConnection(parent context.Context, conn net.Conn) {
	defer func() {
		if err := conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			s.logger.Errorw("connection close failed",
				"error", NewConnectionError("handleConnection", err, "cleanup failed"))
		}
	}()

	ctx, cancel := context.WithTimeout(parent, s.cfg.Deadline)
	defer cancel()

	if err := conn.SetDeadline(time.Now().Add(s.cfg.Deadline)); err != nil {
		s.logger.Errorw("set deadline failed",
			"error", NewConnectionError("handleConnection", err, "setting timeout failed"))
		return
	}

	session := &Session{
		conn:    conn,
		reader:  bufio.NewReaderSize(conn, s.cfg.BufferSize),
		writer:  bufio.NewWriterSize(conn, s.cfg.BufferSize),
		server:  s,
		context: ctx,
	}

	if err := session.Handle(); err != nil {
		s.handleError(session.writer, err)
	}
}

type Session struct {
	conn    net.Conn
	reader  *bufio.Reader
	writer  *bufio.Writer
	server  *Server
	context context.Context
}

type solutionLine struct {
	digest string
	nonce  []byte
	err    error
}

// Handle runs one challenge, solution, verdict exchange.
func (s *Session) Handle() error {
	pow, err := s.sendChallenge()
	if err != nil {
		return fmt.Errorf("failed to send challenge: %w", err)
	}

	digestName, nonce, err := s.readSolution()
	if err != nil {
		return fmt.Errorf("failed to read solution: %w", err)
	}

	if err := s.validateAndRespond(pow, digestName, nonce); err != nil {
		return fmt.Errorf("failed to validate and respond: %w", err)
	}

	return nil
}

// sendChallenge writes the digest code, the difficulty, the block length
// and the block itself, all big-endian.
func (s *Session) sendChallenge() (*domain.ProofOfWork, error) {
	pow, err := s.server.powUsecase.GenerateChallenge()
	if err != nil {
		return nil, NewConnectionError("sendChallenge", ErrChallengeFailed, err.Error())
	}

	code, err := digest.Code(pow.Digest)
	if err != nil {
		return nil, NewConnectionError("sendChallenge", ErrChallengeFailed, err.Error())
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- writeChallenge(s.writer, code, pow)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return nil, NewConnectionError("sendChallenge", ErrChallengeDelivery, err.Error())
		}
	case <-s.context.Done():
		return nil, NewConnectionError("sendChallenge", ErrWriteTimeout, "context deadline exceeded")
	}

	s.server.logger.Infow("challenge sent",
		"remote", s.conn.RemoteAddr().String(),
		"digest", pow.Digest,
		"difficulty", pow.Difficulty,
		"width", pow.Width())

	return pow, nil
}

func writeChallenge(w *bufio.Writer, code byte, pow *domain.ProofOfWork) error {
	if err := w.WriteByte(code); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, uint16(pow.Difficulty)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, int32(len(pow.Data))); err != nil {
		return err
	}
	if _, err := w.Write(pow.Data); err != nil {
		return err
	}
	return w.Flush()
}

func (s *Session) readSolution() (string, []byte, error) {
	resultCh := make(chan solutionLine, 1)

	go func() {
		digestLine, err := readLine(s.reader, maxDigestNameLen)
		if err != nil {
			resultCh <- solutionLine{err: NewConnectionError("readSolution", err, "reading digest failed")}
			return
		}

		nonceLine, err := readLine(s.reader, 2*s.server.cfg.MaxWidth)
		if err != nil {
			resultCh <- solutionLine{err: NewConnectionError("readSolution", err, "reading nonce failed")}
			return
		}

		nonce, err := parseSolution(nonceLine)
		resultCh <- solutionLine{digest: strings.TrimSpace(digestLine), nonce: nonce, err: err}
	}()

	select {
	case result := <-resultCh:
		return result.digest, result.nonce, result.err
	case <-s.context.Done():
		return "", nil, NewConnectionError("readSolution", ErrReadTimeout, "context deadline exceeded")
	}
}

func (s *Session) validateAndRespond(pow *domain.ProofOfWork, digestName string, nonce []byte) error {
	if digestName != pow.Digest {
		return NewConnectionError("validateAndRespond", ErrDigestMismatch,
			fmt.Sprintf("issued %s, got %s", pow.Digest, digestName))
	}

	sol, err := s.server.powUsecase.ValidateSolution(pow, nonce)
	if err != nil {
		return NewConnectionError("validateAndRespond", err, "validation failed")
	}

	receipt, err := s.server.receiptUsecase.Issue(sol)
	if err != nil {
		return NewConnectionError("validateAndRespond", ErrInternal, err.Error())
	}

	s.server.logger.Infow("solution accepted",
		"remote", s.conn.RemoteAddr().String(),
		"nonce", hex.EncodeToString(nonce),
		"leading_zeros", sol.LeadingZeros,
		"receipt", receipt.ID)

	errCh := make(chan error, 1)
	go func() {
		_, err := s.writer.WriteString(formatSuccessResponse(receipt))
		if err == nil {
			err = s.writer.Flush()
		}
		errCh <- err
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return NewConnectionError("validateAndRespond", err, "write response failed")
		}
	case <-s.context.Done():
		return NewConnectionError("validateAndRespond", ErrWriteTimeout, "context deadline exceeded")
	}

	return nil
}

func (s *Server) handleError(writer *bufio.Writer, err error) {
	response := ToErrorResponse(err)
	s.logger.Errorw("client error",
		"code", response.Code,
		"message", response.Message,
		"error", err)

	if err := sendErrorResponse(writer, response); err != nil {
		s.logger.Errorw("failed to send error response", "error", err)
	}
}

// readLine reads up to and including '\n'. Lines longer than limit plus a
// CRLF fail with ErrSolutionFormat without buffering the rest.
func readLine(r *bufio.Reader, limit int) (string, error) {
	var line []byte
	for {
		chunk, err := r.ReadSlice('\n')
		line = append(line, chunk...)
		if len(line) > limit+2 {
			return "", NewConnectionError("readLine", ErrSolutionFormat,
				fmt.Sprintf("line longer than %d bytes", limit))
		}
		if err == nil {
			return string(line), nil
		}
		if !errors.Is(err, bufio.ErrBufferFull) {
			return "", err
		}
	}
}

func parseSolution(line string) ([]byte, error) {
	nonce, err := hex.DecodeString(strings.TrimSpace(line))
	if err != nil {
		return nil, NewConnectionError("parseSolution", ErrSolutionFormat, err.Error())
	}
	return nonce, nil
}

func formatSuccessResponse(receipt *domain.Receipt) string {
	return fmt.Sprintf("SUCCESS:%s\n", receipt)
}

func sendErrorResponse(writer *bufio.Writer, response ErrorResponse) error {
	_, err := writer.WriteString(fmt.Sprintf("ERROR:%s:%s\n", response.Code, response.Message))
	if err != nil {
		return err
	}
	return writer.Flush()
}
