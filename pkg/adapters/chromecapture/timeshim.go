package chromecapture

// timeShim replaces the page clock with a virtual one that only moves when
// window.__timecut.goTo(ms) is called. Timers, animation frames and CSS/Web
// animations all follow the virtual clock.
const timeShim = `(() => {
  if (window.__timecut) { return; }

  const RealDate = Date;
  const realSetTimeout = window.setTimeout.bind(window);
  const wallStart = RealDate.now();
  let current = 0;
  let nextId = 1;
  const timers = new Map();
  let frameCallbacks = new Map();

  class VirtualDate extends RealDate {
    constructor(...args) {
      if (args.length === 0) {
        super(wallStart + current);
      } else {
        super(...args);
      }
    }
    static now() { return wallStart + current; }
  }
  window.Date = VirtualDate;
  performance.now = () => current;

  const addTimer = (fn, delay, args, repeat) => {
    const id = nextId++;
    delay = Math.max(0, Number(delay) || 0);
    timers.set(id, { fn, args, at: current + delay, delay, repeat });
    return id;
  };
  const clearTimer = (id) => { timers.delete(id); };

  window.setTimeout = (fn, delay, ...args) => addTimer(fn, delay, args, false);
  window.setInterval = (fn, delay, ...args) => addTimer(fn, delay, args, true);
  window.clearTimeout = clearTimer;
  window.clearInterval = clearTimer;
  window.requestAnimationFrame = (fn) => {
    const id = nextId++;
    frameCallbacks.set(id, fn);
    return id;
  };
  window.cancelAnimationFrame = (id) => { frameCallbacks.delete(id); };

  const invoke = (fn, args) => {
    try {
      if (typeof fn === 'function') {
        fn(...args);
      } else {
        (0, eval)(String(fn));
      }
    } catch (e) {
      console.error(e);
    }
  };

  const runTimers = (until) => {
    for (;;) {
      let due = null;
      for (const [id, t] of timers) {
        if (t.at <= until && (due === null || t.at < due.t.at)) {
          due = { id, t };
        }
      }
      if (due === null) { break; }
      current = Math.max(current, due.t.at);
      if (due.t.repeat) {
        due.t.at += Math.max(1, due.t.delay);
      } else {
        timers.delete(due.id);
      }
      invoke(due.t.fn, due.t.args);
    }
    current = until;
  };

  const seekAnimations = (ms) => {
    if (!document.getAnimations) { return; }
    for (const animation of document.getAnimations()) {
      try {
        animation.pause();
        animation.currentTime = ms;
      } catch (e) {
        console.error(e);
      }
    }
  };

  window.__timecut = {
    goTo(ms) {
      runTimers(ms);
      seekAnimations(ms);
      const callbacks = frameCallbacks;
      frameCallbacks = new Map();
      for (const fn of callbacks.values()) {
        invoke(fn, [ms]);
      }
      return new Promise((resolve) => realSetTimeout(() => resolve(current), 0));
    },
  };
})();`
