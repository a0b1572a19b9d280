package software

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/prism/engine/compute"
	"github.com/spaghettifunk/prism/engine/systems"
)

// Queue splits every ND-range into row bands and hands them to the context
// worker pool. Commands complete in submission order from the caller's
// point of view: every blocking call waits for all earlier work.
type Queue struct {
	ctx      *Context
	wg       sync.WaitGroup
	mu       sync.Mutex
	err      error
	released bool
}

func (q *Queue) EnqueueNDRange(kernel compute.Kernel, global [2]int) error {
	if q.released || q.ctx.jobs == nil {
		return errReleased
	}
	k, ok := kernel.(*Kernel)
	if !ok {
		return fmt.Errorf("kernel does not belong to a software context")
	}
	if global[0] <= 0 || global[1] <= 0 {
		return fmt.Errorf("invalid global work size %v", global)
	}
	args, err := k.snapshot()
	if err != nil {
		return err
	}

	width, height := global[0], global[1]
	band := max(1, height/(q.ctx.jobs.Workers()*4))
	run := k.impl.Run
	for y0 := 0; y0 < height; y0 += band {
		y0, y1 := y0, min(y0+band, height)
		q.wg.Add(1)
		q.ctx.jobs.Submit(systems.JobTask{
			OnStart: func() error {
				for y := y0; y < y1; y++ {
					for x := 0; x < width; x++ {
						run(x, y, args)
					}
				}
				return nil
			},
			OnFailure:            q.fail,
			OnCompletionCallback: q.wg.Done,
		})
	}
	return nil
}

func (q *Queue) fail(err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err == nil {
		q.err = err
	}
}

func (q *Queue) AcquireTextures(images ...compute.Image) error {
	for _, i := range images {
		img, ok := i.(*Image)
		if !ok || !img.SharesTexture() {
			return fmt.Errorf("acquire: image is not a shared texture")
		}
		if img.acquired {
			return fmt.Errorf("acquire: texture %d already acquired", img.texture.ID)
		}
	}
	for _, i := range images {
		i.(*Image).acquired = true
	}
	return nil
}

// ReleaseTextures waits for pending work, then gives the textures back to
// the rasterizer.
func (q *Queue) ReleaseTextures(images ...compute.Image) error {
	for _, i := range images {
		img, ok := i.(*Image)
		if !ok || !img.SharesTexture() || !img.acquired {
			return fmt.Errorf("release: texture was not acquired")
		}
	}
	q.wg.Wait()
	for _, i := range images {
		img := i.(*Image)
		img.acquired = false
		img.texture.Generation++
	}
	return nil
}

func (q *Queue) ReadImage(image compute.Image, dst []byte) error {
	img, ok := image.(*Image)
	if !ok || img.released {
		return fmt.Errorf("read image: invalid image")
	}
	if len(dst) != len(img.pixels.Pix) {
		return fmt.Errorf("read image: expected %d bytes, got %d", len(img.pixels.Pix), len(dst))
	}
	if err := q.Finish(); err != nil {
		return err
	}
	copy(dst, img.pixels.Pix)
	return nil
}

func (q *Queue) ReadBuffer(buffer compute.Buffer, dst []byte) error {
	buf, ok := buffer.(*Buffer)
	if !ok || buf.released {
		return fmt.Errorf("read buffer: invalid buffer")
	}
	if len(dst) > len(buf.data) {
		return fmt.Errorf("read buffer: %d bytes requested, buffer holds %d", len(dst), len(buf.data))
	}
	if err := q.Finish(); err != nil {
		return err
	}
	copy(dst, buf.data)
	return nil
}

// Finish blocks until every enqueued band has run and returns the first
// failure since the previous Finish.
func (q *Queue) Finish() error {
	q.wg.Wait()
	q.mu.Lock()
	defer q.mu.Unlock()
	err := q.err
	q.err = nil
	return err
}

func (q *Queue) Release() error {
	if q.released {
		return errReleased
	}
	q.wg.Wait()
	q.released = true
	return nil
}
