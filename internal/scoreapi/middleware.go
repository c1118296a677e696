package scoreapi

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"

	"github.com/animica-labs/poies/pkg/signature"
)

// ZstdMiddleware decompresses request bodies sent with Content-Encoding:
// zstd and compresses responses when the client accepts zstd.
func ZstdMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if strings.Contains(strings.ToLower(c.Get("Content-Encoding")), "zstd") {
			r, err := zstd.NewReader(bytes.NewReader(c.Body()))
			if err != nil {
				log.Error().Err(err).Msg("zstd: failed to create reader for request body")
				return c.Status(fiber.StatusBadRequest).SendString("invalid zstd request body")
			}
			defer r.Close()

			out, err := io.ReadAll(r)
			if err != nil {
				log.Error().Err(err).Msg("zstd: failed to decompress request body")
				return c.Status(fiber.StatusBadRequest).SendString("invalid zstd request body")
			}

			c.Request().SetBody(out)
			c.Request().Header.Set("Content-Length", strconv.Itoa(len(out)))
			c.Request().Header.Del("Content-Encoding")
		}

		if err := c.Next(); err != nil {
			return err
		}

		if strings.Contains(strings.ToLower(c.Get("Accept-Encoding")), "zstd") {
			respBody := c.Response().Body()
			var buf bytes.Buffer
			w, err := zstd.NewWriter(&buf)
			if err != nil {
				log.Error().Err(err).Msg("zstd: failed to create writer for response body")
				return nil
			}
			if _, err := w.Write(respBody); err != nil {
				_ = w.Close()
				log.Error().Err(err).Msg("zstd: failed to compress response body")
				return nil
			}
			_ = w.Close()

			comp := buf.Bytes()
			c.Response().SetBody(comp)
			c.Set("Content-Encoding", "zstd")
			c.Set("Vary", "Accept-Encoding")
			c.Set("Content-Length", strconv.Itoa(len(comp)))
		}

		return nil
	}
}

// VerifySignatureMiddleware authenticates provider submissions. Requires
// headers x-signature, x-address, x-timestamp; the signed message binds the
// address and timestamp so a signature cannot be replayed for another
// provider.
func VerifySignatureMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sig := c.Get("x-signature")
		address := c.Get("x-address")
		timestamp := c.Get("x-timestamp") // unix seconds
		if sig == "" || address == "" {
			log.Warn().Bool("missing_sig", sig == "").Bool("missing_address", address == "").Msg("missing signature or address header")
			return c.Status(fiber.StatusUnauthorized).SendString("missing signature or address header")
		}

		message := SubmissionMessage(address, timestamp)

		valid, err := signature.Verify(message, sig, address)
		if err != nil {
			log.Error().Err(err).Str("address", address).Msg("signature verification error")
			return c.Status(fiber.StatusUnauthorized).SendString("signature verification error")
		}
		if !valid {
			log.Warn().Str("address", address).Msg("invalid signature")
			return c.Status(fiber.StatusUnauthorized).SendString("invalid signature")
		}

		return c.Next()
	}
}

// SubmissionMessage is the canonical string a provider signs when submitting
// snapshots.
func SubmissionMessage(address, timestamp string) string {
	return fmt.Sprintf("%s.%s.poies snapshot submission", address, timestamp)
}
