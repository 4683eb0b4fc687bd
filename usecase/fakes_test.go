package usecase

import (
	"context"
	"io"
	"os"
	"sync"

	domainAuth "github.com/AzielCF/telebridge/domains/auth"
	domainForward "github.com/AzielCF/telebridge/domains/forward"
)

type fakeSource struct {
	msg      *domainForward.FetchedMessage
	fetchErr error
	payload  []byte
	dlErr    error
	panicOn  bool
	// panicMidDownload panics after the payload has been written
	panicMidDownload bool

	downloads int
}

func (f *fakeSource) FetchMessage(ctx context.Context, ref domainForward.ParsedReference) (*domainForward.FetchedMessage, error) {
	if f.panicOn {
		panic("source exploded")
	}
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if f.msg != nil {
		f.msg.Reference = ref
	}
	return f.msg, nil
}

func (f *fakeSource) DownloadMedia(ctx context.Context, msg *domainForward.FetchedMessage, w io.Writer) error {
	f.downloads++
	// write in chunks like the real downloader does
	for i := 0; i < len(f.payload); i += 4 {
		end := i + 4
		if end > len(f.payload) {
			end = len(f.payload)
		}
		if _, err := w.Write(f.payload[i:end]); err != nil {
			return err
		}
	}
	if f.panicMidDownload {
		panic("downloader exploded")
	}
	return f.dlErr
}

type fakeRelay struct {
	mu      sync.Mutex
	err     error
	uploads []domainForward.Upload
	// contents holds what was on disk at send time
	contents [][]byte
}

func (f *fakeRelay) SendFile(ctx context.Context, upload domainForward.Upload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, _ := os.ReadFile(upload.Path)
	f.uploads = append(f.uploads, upload)
	f.contents = append(f.contents, data)
	return f.err
}

type fakeUserGateway struct {
	hash        string
	sendErr     error
	signInErr   error
	passwordErr error
	authorized  bool
	me          domainAuth.Me

	gotPhone, gotCode, gotHash, gotPassword string
}

func (f *fakeUserGateway) SendCode(ctx context.Context, phone string) (string, error) {
	f.gotPhone = phone
	return f.hash, f.sendErr
}

func (f *fakeUserGateway) SignIn(ctx context.Context, phone, code, codeHash string) (domainAuth.Me, error) {
	f.gotCode, f.gotHash = code, codeHash
	if f.signInErr != nil {
		return domainAuth.Me{}, f.signInErr
	}
	return f.me, nil
}

func (f *fakeUserGateway) CheckPassword(ctx context.Context, password string) (domainAuth.Me, error) {
	f.gotPassword = password
	if f.passwordErr != nil {
		return domainAuth.Me{}, f.passwordErr
	}
	return f.me, nil
}

func (f *fakeUserGateway) Authorized(ctx context.Context) (bool, error) {
	return f.authorized, nil
}

func (f *fakeUserGateway) Self(ctx context.Context) (domainAuth.Me, error) {
	return f.me, nil
}
