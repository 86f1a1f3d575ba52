package document

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
)

var _ = Describe("Server", func() {
	var (
		storage     *mockStorage
		ocr         *mockOCR
		gateway     *mockGateway
		auth        BasicAuth
		server      *Server
		ghttpServer *ghttp.Server
	)

	BeforeEach(func() {
		storage = newMockStorage("/uploads/cert.pdf", "/uploads/blank.png")
		ocr = newMockOCR()
		ocr.texts["blank.png"] = ""
		gateway = newMockGateway()
		auth = BasicAuth{}
	})

	JustBeforeEach(func() {
		server = NewServerWithMux(NewProcessor(storage, ocr, gateway), storage, auth, http.NewServeMux())
		ghttpServer = ghttp.NewServer()
		ghttpServer.AppendHandlers(server.ServeHTTP)
	})

	AfterEach(func() {
		ghttpServer.Close()
	})

	uploadRequest := func(files map[string]string) *http.Request {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		for name, content := range files {
			part, err := writer.CreateFormFile("file", name)
			Expect(err).NotTo(HaveOccurred())
			_, err = part.Write([]byte(content))
			Expect(err).NotTo(HaveOccurred())
		}
		Expect(writer.Close()).To(Succeed())

		req, err := http.NewRequest(http.MethodPost, ghttpServer.URL()+"/upload", body)
		Expect(err).NotTo(HaveOccurred())
		req.Header.Set("Content-Type", writer.FormDataContentType())
		return req
	}

	Describe("handleProcess", func() {
		When("files are waiting", func() {
			It("returns status OK with one record per file", func() {
				resp, err := http.Post(ghttpServer.URL()+"/process_invoices", "", nil)
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()

				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				Expect(resp.Header.Get("Content-Type")).To(Equal("application/json"))

				body, err := io.ReadAll(resp.Body)
				Expect(err).NotTo(HaveOccurred())
				Expect(body).To(MatchJSON(`[
					{
						"filename": "cert.pdf",
						"document_type": "CONFERENCE",
						"extracted_data": {"title": "Sparse Attention"},
						"confidence": 0.88
					},
					{"filename": "blank.png", "error": "OCR failed to extract text"}
				]`))
			})

			It("sets CORS headers", func() {
				resp, err := http.Post(ghttpServer.URL()+"/process_invoices", "", nil)
				Expect(err).NotTo(HaveOccurred())
				resp.Body.Close()
				Expect(resp.Header.Get("Access-Control-Allow-Origin")).To(Equal("*"))
			})
		})

		When("no files are waiting", func() {
			BeforeEach(func() {
				storage = newMockStorage()
			})

			It("returns Bad Request with the no files error", func() {
				resp, err := http.Post(ghttpServer.URL()+"/process_invoices", "", nil)
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()

				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
				body, err := io.ReadAll(resp.Body)
				Expect(err).NotTo(HaveOccurred())
				Expect(body).To(MatchJSON(`{"error": "No files to process"}`))
			})
		})

		When("the upload directory cannot be listed", func() {
			BeforeEach(func() {
				storage.listErr = errors.New("disk gone")
			})

			It("returns Internal Server Error", func() {
				resp, err := http.Post(ghttpServer.URL()+"/process_invoices", "", nil)
				Expect(err).NotTo(HaveOccurred())
				resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
			})
		})

		When("the method is not POST", func() {
			It("returns Method Not Allowed", func() {
				resp, err := http.Get(ghttpServer.URL() + "/process_invoices")
				Expect(err).NotTo(HaveOccurred())
				resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusMethodNotAllowed))
			})
		})

		When("the request is a CORS preflight", func() {
			It("returns No Content without processing", func() {
				req, err := http.NewRequest(http.MethodOptions, ghttpServer.URL()+"/process_invoices", nil)
				Expect(err).NotTo(HaveOccurred())
				resp, err := http.DefaultClient.Do(req)
				Expect(err).NotTo(HaveOccurred())
				resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
				Expect(ocr.calls).To(BeEmpty())
			})
		})
	})

	Describe("handleUpload", func() {
		When("allowed files are uploaded", func() {
			It("saves them and returns Created with their names", func() {
				resp, err := http.DefaultClient.Do(uploadRequest(map[string]string{"patent.pdf": "%PDF-1.4"}))
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()

				Expect(resp.StatusCode).To(Equal(http.StatusCreated))
				body, err := io.ReadAll(resp.Body)
				Expect(err).NotTo(HaveOccurred())
				Expect(body).To(MatchJSON(`{"files": ["id_patent.pdf"]}`))
				Expect(storage.saved).To(HaveKeyWithValue("id_patent.pdf", []byte("%PDF-1.4")))
			})
		})

		When("a file type is not allowed", func() {
			It("returns Bad Request and saves nothing", func() {
				resp, err := http.DefaultClient.Do(uploadRequest(map[string]string{"cv.docx": "PK"}))
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()

				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
				var payload map[string]string
				Expect(json.NewDecoder(resp.Body).Decode(&payload)).To(Succeed())
				Expect(payload["error"]).To(ContainSubstring("cv.docx"))
				Expect(storage.saved).To(BeEmpty())
			})
		})

		When("no file is provided", func() {
			It("returns Bad Request", func() {
				resp, err := http.DefaultClient.Do(uploadRequest(map[string]string{}))
				Expect(err).NotTo(HaveOccurred())
				resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			})
		})

		When("the body is not multipart", func() {
			It("returns Bad Request", func() {
				resp, err := http.Post(ghttpServer.URL()+"/upload", "application/json", bytes.NewBufferString("{}"))
				Expect(err).NotTo(HaveOccurred())
				resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			})
		})

		When("saving fails", func() {
			BeforeEach(func() {
				storage.saveErr = errors.New("disk full")
			})

			It("returns Internal Server Error", func() {
				resp, err := http.DefaultClient.Do(uploadRequest(map[string]string{"grant.png": "png"}))
				Expect(err).NotTo(HaveOccurred())
				resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
			})
		})
	})

	Describe("authentication", func() {
		BeforeEach(func() {
			auth = BasicAuth{Username: "admin", Password: "secret"}
		})

		When("credentials are missing", func() {
			It("returns Unauthorized without processing", func() {
				resp, err := http.Post(ghttpServer.URL()+"/process_invoices", "", nil)
				Expect(err).NotTo(HaveOccurred())
				resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
				Expect(resp.Header.Get("WWW-Authenticate")).To(ContainSubstring("Basic"))
				Expect(ocr.calls).To(BeEmpty())
			})
		})

		When("credentials are wrong", func() {
			It("returns Unauthorized", func() {
				req, err := http.NewRequest(http.MethodPost, ghttpServer.URL()+"/process_invoices", nil)
				Expect(err).NotTo(HaveOccurred())
				req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte("admin:wrong")))
				resp, err := http.DefaultClient.Do(req)
				Expect(err).NotTo(HaveOccurred())
				resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
			})
		})

		When("credentials are correct", func() {
			It("processes the batch", func() {
				req, err := http.NewRequest(http.MethodPost, ghttpServer.URL()+"/process_invoices", nil)
				Expect(err).NotTo(HaveOccurred())
				req.SetBasicAuth("admin", "secret")
				resp, err := http.DefaultClient.Do(req)
				Expect(err).NotTo(HaveOccurred())
				resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
			})
		})
	})
})
